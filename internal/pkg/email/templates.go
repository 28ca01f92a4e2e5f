package email

// Email templates in HTML format

// BaseTemplate is the base layout for all emails
const BaseTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body {
            margin: 0;
            padding: 0;
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background-color: #0f0f0f;
            color: #ffffff;
        }
        .container {
            max-width: 600px;
            margin: 0 auto;
            padding: 40px 20px;
        }
        .card {
            background: #1a1a1a;
            border-radius: 12px;
            padding: 32px;
            border: 1px solid #2a2a2a;
        }
        .logo {
            text-align: center;
            margin-bottom: 24px;
        }
        .logo h1 {
            font-size: 28px;
            background: linear-gradient(135deg, #22c55e 0%, #0ea5e9 100%);
            -webkit-background-clip: text;
            -webkit-text-fill-color: transparent;
            margin: 0;
        }
        h2 {
            color: #ffffff;
            font-size: 24px;
            margin: 0 0 16px;
        }
        p {
            color: #888888;
            font-size: 16px;
            line-height: 1.6;
            margin: 0 0 16px;
        }
        .btn {
            display: inline-block;
            background: linear-gradient(135deg, #22c55e 0%, #0ea5e9 100%);
            color: #ffffff !important;
            text-decoration: none;
            padding: 14px 28px;
            border-radius: 8px;
            font-weight: 600;
            font-size: 16px;
            margin: 16px 0;
        }
        .footer {
            text-align: center;
            margin-top: 32px;
            color: #666666;
            font-size: 12px;
        }
        .highlight {
            color: #22c55e;
            font-weight: 600;
        }
        .warning {
            color: #f59e0b;
            font-weight: 600;
        }
        .critical {
            color: #ef4444;
            font-weight: 600;
        }
        .info-box {
            background: #252525;
            border-radius: 8px;
            padding: 16px;
            margin: 16px 0;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="card">
            <div class="logo">
                <h1>LeadFlow</h1>
            </div>
            {{.Content}}
        </div>
        <div class="footer">
            <p>© 2026 LeadFlow. Все права защищены.</p>
            <p>Вы получили это письмо, потому что ваша компания зарегистрирована на leadflow.kz</p>
        </div>
    </div>
</body>
</html>
`

// LowBalanceTemplate - balance dropped into an alert tier
const LowBalanceTemplate = `
<h2>⚠️ Баланс депозита на исходе</h2>
<p>Остаток на вашем депозите: <span class="warning">{{.CurrentBalance}} ₸</span> (уровень: {{.Tier}}).</p>
<div class="info-box">
    <p><strong>Депозит:</strong> {{.DepositID}}</p>
</div>
<p>Пополните депозит, чтобы приём лидов не остановился.</p>
<a href="{{.RechargeURL}}" class="btn">Пополнить депозит</a>
`

// DepositDepletedTemplate - deposit hit zero, campaigns paused
const DepositDepletedTemplate = `
<h2>🛑 Депозит исчерпан</h2>
<p>Баланс вашего депозита: <span class="critical">0 ₸</span>. Приём новых лидов остановлен, связанные кампании поставлены на паузу.</p>
<p>После пополнения кампании возобновятся автоматически.</p>
<a href="{{.RechargeURL}}" class="btn">Пополнить депозит</a>
`

// AutoRechargeTemplate - auto-recharge was applied
const AutoRechargeTemplate = `
<h2>✅ Автопополнение выполнено</h2>
<p>На ваш депозит зачислено <span class="highlight">{{.Amount}} ₸</span> по настройке автопополнения.</p>
<div class="info-box">
    <p><strong>Депозит:</strong> {{.DepositID}}</p>
</div>
`

// CampaignPausedTemplate - campaign paused due to balance
const CampaignPausedTemplate = `
<h2>⏸ Кампания приостановлена</h2>
<p>Кампания приостановлена из-за состояния депозита.</p>
<p>Пополните депозит, чтобы возобновить приём лидов.</p>
<a href="{{.RechargeURL}}" class="btn">Пополнить депозит</a>
`

// LeadReceivedTemplate - a new lead arrived
const LeadReceivedTemplate = `
<h2>📩 Новый лид</h2>
<p>По вашей кампании поступил новый лид: <span class="highlight">{{.ContactName}}</span>.</p>
<p>Сумма комиссии зарезервирована на депозите. Подтвердите или отклоните лид в течение 72 часов.</p>
<a href="{{.LeadURL}}" class="btn">Открыть лид</a>
`

// LeadValidatedTemplate - lead was validated, commission deducted
const LeadValidatedTemplate = `
<h2>✅ Лид подтверждён</h2>
<p>Лид <span class="highlight">{{.ContactName}}</span> подтверждён, комиссия {{.Amount}} ₸ списана с депозита.</p>
`

// LeadRejectedTemplate - lead was rejected, reservation released
const LeadRejectedTemplate = `
<h2>Лид отклонён</h2>
<p>Лид <strong>{{.ContactName}}</strong> отклонён. Зарезервированная сумма возвращена на баланс депозита.</p>
`

// DailyReportTemplate - operator daily platform report
const DailyReportTemplate = `
<h2>📊 Ежедневный отчёт платформы</h2>
<div class="info-box">
    <p><strong>Активных депозитов:</strong> {{.ActiveDeposits}}</p>
    <p><strong>Исчерпанных депозитов:</strong> {{.DepletedDeposits}}</p>
    <p><strong>Суммарный баланс:</strong> {{.TotalBalance}} ₸</p>
    <p><strong>Лидов за сутки:</strong> {{.LeadsToday}}</p>
    <p><strong>Выручка за месяц:</strong> {{.RevenueThisMonth}} ₸</p>
</div>
`
