package payment

import (
	"context"
	"net/url"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leadflow/leadflow-api/internal/domain/deposit"
	"github.com/leadflow/leadflow-api/internal/pkg/robokassa"
)

type fakeRepo struct {
	payments map[int64]*Payment
	nextInv  int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{payments: map[int64]*Payment{}, nextInv: 1000}
}

func (f *fakeRepo) Create(ctx context.Context, p *Payment) error {
	f.payments[p.InvID] = p
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	for _, p := range f.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrPaymentNotFound
}

func (f *fakeRepo) GetByInvID(ctx context.Context, invID int64) (*Payment, error) {
	p, ok := f.payments[invID]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

func (f *fakeRepo) NextInvID(ctx context.Context) (int64, error) {
	f.nextInv++
	return f.nextInv, nil
}

func (f *fakeRepo) MarkCompleted(ctx context.Context, invID int64, raw []byte) (bool, error) {
	p, ok := f.payments[invID]
	if !ok || p.Status != StatusPending {
		return false, nil
	}
	p.Status = StatusCompleted
	p.RawCallbackPayload = raw
	return true, nil
}

func (f *fakeRepo) MarkFailed(ctx context.Context, invID int64) error {
	if p, ok := f.payments[invID]; ok && p.Status == StatusPending {
		p.Status = StatusFailed
	}
	return nil
}

func (f *fakeRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*Payment, error) {
	return nil, nil
}

type fakeRecharger struct {
	recharges []string
	amounts   []decimal.Decimal
}

func (f *fakeRecharger) GetByID(ctx context.Context, depositID, merchantID uuid.UUID) (*deposit.Deposit, error) {
	return &deposit.Deposit{ID: depositID, MerchantID: merchantID}, nil
}

func (f *fakeRecharger) Recharge(ctx context.Context, depositID, merchantID uuid.UUID, amount decimal.Decimal, method, reference string, createdBy uuid.NullUUID) (*deposit.Deposit, error) {
	f.recharges = append(f.recharges, reference)
	f.amounts = append(f.amounts, amount)
	return &deposit.Deposit{ID: depositID, MerchantID: merchantID}, nil
}

type fakeResumer struct {
	resumed []uuid.UUID
}

func (f *fakeResumer) ResumeDepleted(ctx context.Context, merchantID uuid.UUID) {
	f.resumed = append(f.resumed, merchantID)
}

func newTestService(t *testing.T) (*Service, *fakeRepo, *fakeRecharger, *fakeResumer) {
	t.Helper()
	repo := newFakeRepo()
	recharger := &fakeRecharger{}
	resumer := &fakeResumer{}
	svc := NewService(repo, recharger, resumer, GatewayConfig{
		MerchantLogin: "leadflow",
		Password1:     "pass1",
		Password2:     "pass2",
		HashAlgo:      "SHA256",
	})
	return svc, repo, recharger, resumer
}

func resultForm(t *testing.T, invID int64, outSum, password2 string) url.Values {
	t.Helper()
	base := robokassa.BuildResultSignatureBase(outSum, strconv.FormatInt(invID, 10), password2, nil)
	sig, err := robokassa.Sign(base, robokassa.HashSHA256)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return url.Values{
		"OutSum":         {outSum},
		"InvId":          {strconv.FormatInt(invID, 10)},
		"SignatureValue": {sig},
	}
}

func TestProcessResultSettlesInvoice(t *testing.T) {
	svc, repo, recharger, resumer := newTestService(t)
	ctx := context.Background()
	merchantID := uuid.New()

	out, err := svc.InitRecharge(ctx, CheckoutParams{
		MerchantID: merchantID,
		DepositID:  uuid.New(),
		Amount:     decimal.NewFromInt(5000),
	})
	if err != nil {
		t.Fatalf("init recharge: %v", err)
	}
	if out.PaymentURL == "" {
		t.Fatal("expected payment URL")
	}

	ack, err := svc.ProcessResult(ctx, resultForm(t, out.InvID, "5000.00", "pass2"))
	if err != nil {
		t.Fatalf("process result: %v", err)
	}
	if want := "OK" + strconv.FormatInt(out.InvID, 10); ack != want {
		t.Fatalf("expected ack %q, got %q", want, ack)
	}

	if len(recharger.recharges) != 1 {
		t.Fatalf("expected 1 recharge, got %d", len(recharger.recharges))
	}
	if want := "robokassa:" + strconv.FormatInt(out.InvID, 10); recharger.recharges[0] != want {
		t.Fatalf("expected reference %q, got %q", want, recharger.recharges[0])
	}
	if !recharger.amounts[0].Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected recharge of 5000, got %s", recharger.amounts[0])
	}
	if len(resumer.resumed) != 1 || resumer.resumed[0] != merchantID {
		t.Fatal("expected depleted campaigns to be resumed for the merchant")
	}
	if p := repo.payments[out.InvID]; p.Status != StatusCompleted {
		t.Fatalf("expected completed invoice, got %s", p.Status)
	}
}

func TestProcessResultReplayAcknowledgedOnce(t *testing.T) {
	svc, _, recharger, resumer := newTestService(t)
	ctx := context.Background()

	out, err := svc.InitRecharge(ctx, CheckoutParams{
		MerchantID: uuid.New(),
		DepositID:  uuid.New(),
		Amount:     decimal.NewFromInt(2500),
	})
	if err != nil {
		t.Fatalf("init recharge: %v", err)
	}

	form := resultForm(t, out.InvID, "2500.00", "pass2")
	if _, err := svc.ProcessResult(ctx, form); err != nil {
		t.Fatalf("first callback: %v", err)
	}
	ack, err := svc.ProcessResult(ctx, form)
	if err != nil {
		t.Fatalf("replayed callback: %v", err)
	}
	if want := "OK" + strconv.FormatInt(out.InvID, 10); ack != want {
		t.Fatalf("expected ack %q, got %q", want, ack)
	}

	if len(recharger.recharges) != 1 {
		t.Fatalf("replay must not recharge again, got %d recharges", len(recharger.recharges))
	}
	if len(resumer.resumed) != 1 {
		t.Fatalf("replay must not resume again, got %d", len(resumer.resumed))
	}
}

func TestProcessResultRejectsBadSignature(t *testing.T) {
	svc, _, recharger, _ := newTestService(t)
	ctx := context.Background()

	out, err := svc.InitRecharge(ctx, CheckoutParams{
		MerchantID: uuid.New(),
		DepositID:  uuid.New(),
		Amount:     decimal.NewFromInt(2500),
	})
	if err != nil {
		t.Fatalf("init recharge: %v", err)
	}

	form := resultForm(t, out.InvID, "2500.00", "wrong-password")
	if _, err := svc.ProcessResult(ctx, form); err == nil {
		t.Fatal("expected signature rejection")
	}
	if len(recharger.recharges) != 0 {
		t.Fatal("rejected callback must not touch the ledger")
	}
}

func TestProcessResultRejectsAmountMismatch(t *testing.T) {
	svc, _, recharger, _ := newTestService(t)
	ctx := context.Background()

	out, err := svc.InitRecharge(ctx, CheckoutParams{
		MerchantID: uuid.New(),
		DepositID:  uuid.New(),
		Amount:     decimal.NewFromInt(2500),
	})
	if err != nil {
		t.Fatalf("init recharge: %v", err)
	}

	// Correctly signed but for a different amount than the invoice.
	form := resultForm(t, out.InvID, "100.00", "pass2")
	if _, err := svc.ProcessResult(ctx, form); err == nil {
		t.Fatal("expected amount mismatch rejection")
	}
	if len(recharger.recharges) != 0 {
		t.Fatal("mismatched callback must not touch the ledger")
	}
}

func TestInitRechargeRejectsNonPositiveAmount(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.InitRecharge(context.Background(), CheckoutParams{
		MerchantID: uuid.New(),
		DepositID:  uuid.New(),
		Amount:     decimal.Zero,
	})
	if err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
