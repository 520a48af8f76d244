package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/storefront/api"
	"github.com/metinatakli/storefront/internal/checkout"
	"github.com/metinatakli/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	checkoutLockTTL     = 30 * time.Second
	maxWebhookBodyBytes = int64(65536)
)

// releaseCheckoutLockScript deletes the lock only while it still holds the token
// of the attempt that took it.
var releaseCheckoutLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func checkoutLockKey(basketID string) string {
	return fmt.Sprintf("checkout_lock:%s", basketID)
}

type checkoutLock struct {
	key   string
	token string
}

type checkoutAttemptKey struct{}

// checkoutAttempt collects what an in-process session creation left behind, so
// the page can undo it when the hand-off to the hosted page fails.
type checkoutAttempt struct {
	lock      *checkoutLock
	sessionID string
}

func withCheckoutAttempt(ctx context.Context, attempt *checkoutAttempt) context.Context {
	return context.WithValue(ctx, checkoutAttemptKey{}, attempt)
}

func checkoutAttemptFromContext(ctx context.Context) *checkoutAttempt {
	attempt, _ := ctx.Value(checkoutAttemptKey{}).(*checkoutAttempt)
	return attempt
}

func (app *Application) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var input api.CreateCheckoutSessionRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.checkoutErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.checkoutErrorResponse(w, r, http.StatusUnprocessableEntity, validationSummary(err))
		return
	}

	items := make([]domain.Item, len(input.Items))
	for i, item := range input.Items {
		items[i] = domain.Item{ProductID: item.Id}
	}

	basketID := app.sessionManager.Token(r.Context())

	session, _, err := app.createCheckoutSession(r.Context(), basketID, items)
	if err != nil {
		status, message := checkoutErrorStatus(err)
		if status >= http.StatusInternalServerError {
			app.logError(r, err)
		}

		app.checkoutErrorResponse(w, r, status, message)
		return
	}

	resp := api.CheckoutSession{
		Id:     session.ID,
		Url:    session.URL,
		Status: string(session.Status),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createSessionInProcess serves the checkout page when no remote checkout API is
// configured. Failures are reported the same way the HTTP endpoint reports them.
func (app *Application) createSessionInProcess(ctx context.Context, items []domain.Item) (*domain.CheckoutSession, error) {
	basketID := app.sessionManager.Token(ctx)

	session, lock, err := app.createCheckoutSession(ctx, basketID, items)
	if err != nil {
		status, message := checkoutErrorStatus(err)
		if status >= http.StatusInternalServerError {
			app.loggerFromContext(ctx).Error("checkout session creation failed", "error", err)
		}

		return nil, &checkout.ServerError{StatusCode: status, Message: message}
	}

	if attempt := checkoutAttemptFromContext(ctx); attempt != nil {
		attempt.lock = lock
		attempt.sessionID = session.ID
	}

	return session, nil
}

// abandonCheckout undoes an in-process session creation whose hand-off failed:
// the basket lock is released and the pending payment canceled, so the visitor
// can retry at once.
func (app *Application) abandonCheckout(ctx context.Context, attempt *checkoutAttempt) {
	if attempt == nil || attempt.lock == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)

	app.releaseCheckoutLock(ctx, attempt.lock)

	err := app.paymentRepo.UpdateStatus(ctx, attempt.sessionID, domain.PaymentStatusCanceled, "redirect to hosted checkout failed")
	if err != nil {
		app.loggerFromContext(ctx).Error("failed to cancel abandoned payment",
			"checkout_session_id", attempt.sessionID,
			"error", err,
		)
	}
}

// createCheckoutSession reprices items from the catalog, opens a hosted session
// at the payment provider and records a pending payment for it.
//
// A per-basket lock admits one creation at a time. It is released on failure so
// the visitor can retry, and left to expire on success. The returned lock lets
// the caller release it when the hand-off fails later.
func (app *Application) createCheckoutSession(
	ctx context.Context,
	basketID string,
	items []domain.Item) (*domain.CheckoutSession, *checkoutLock, error) {

	if len(items) == 0 {
		return nil, nil, domain.ErrBasketEmpty
	}

	priced, err := app.priceItems(ctx, items)
	if err != nil {
		return nil, nil, err
	}

	lock, err := app.acquireCheckoutLock(ctx, basketID)
	if err != nil {
		return nil, nil, err
	}

	session, err := app.openCheckoutSession(ctx, basketID, priced)
	if err != nil {
		app.releaseCheckoutLock(context.WithoutCancel(ctx), lock)
		return nil, nil, err
	}

	return session, lock, nil
}

func (app *Application) acquireCheckoutLock(ctx context.Context, basketID string) (*checkoutLock, error) {
	lock := &checkoutLock{
		key:   checkoutLockKey(basketID),
		token: uuid.NewString(),
	}

	acquired, err := app.redis.SetNX(ctx, lock.key, lock.token, checkoutLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire checkout lock: %w", err)
	}

	if !acquired {
		app.loggerFromContext(ctx).Warn("checkout session rejected: another creation is in flight", "basket_id", basketID)
		return nil, domain.ErrCheckoutInProgress
	}

	return lock, nil
}

// releaseCheckoutLock leaves a lock alone once it expired and another attempt
// took it over.
func (app *Application) releaseCheckoutLock(ctx context.Context, lock *checkoutLock) {
	logger := app.loggerFromContext(ctx)

	released, err := releaseCheckoutLockScript.Run(ctx, app.redis, []string{lock.key}, lock.token).Int()
	switch {
	case err != nil:
		logger.Error("failed to release checkout lock", "key", lock.key, "error", err)
	case released == 0:
		logger.Warn("checkout lock expired before it was released", "key", lock.key)
	}
}

func (app *Application) openCheckoutSession(
	ctx context.Context,
	basketID string,
	items []domain.Item) (*domain.CheckoutSession, error) {

	currency := app.config.Checkout.Currency
	groups := domain.GroupItems(items)

	req := domain.CheckoutRequest{
		BasketID:       basketID,
		Groups:         groups,
		Currency:       currency,
		IdempotencyKey: checkoutIdempotencyKey(basketID, currency, groups),
	}

	session, err := app.requestCheckoutSession(ctx, req)
	if err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		BasketID:          basketID,
		CheckoutSessionId: session.ID,
		Amount:            domain.Total(items),
		Currency:          currency,
		Status:            domain.PaymentStatusPending,
	}

	err = app.paymentRepo.Create(ctx, payment)
	if errors.Is(err, domain.ErrDuplicateCheckoutSession) {
		session, err = app.resumeCheckoutSession(ctx, req, session, payment)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to record pending payment: %w", err)
	}

	app.loggerFromContext(ctx).Info("checkout session created",
		"basket_id", basketID,
		"checkout_session_id", session.ID,
		"amount", payment.Amount.String(),
		"currency", currency,
	)

	return session, nil
}

// requestCheckoutSession asks the provider for a hosted session and rejects
// answers the visitor could not be redirected with.
func (app *Application) requestCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	cs, err := app.paymentProvider.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, err
	}

	if cs == nil || cs.ID == "" {
		return nil, domain.ErrMissingCheckoutSessionID
	}

	_, err = checkout.ParseRedirectURL(cs.URL)
	if err != nil {
		return nil, fmt.Errorf("checkout session %s: %w", cs.ID, err)
	}

	status := domain.CheckoutSessionStatus(cs.Status)
	if status == "" {
		status = domain.CheckoutSessionStatusOpen
	}

	return &domain.CheckoutSession{
		ID:     cs.ID,
		URL:    cs.URL,
		Status: status,
	}, nil
}

// resumeCheckoutSession handles a provider answer that replayed a session already
// recorded under the same idempotency key. A pending session is handed out again;
// a settled one is replaced by a new session under a fresh key.
func (app *Application) resumeCheckoutSession(
	ctx context.Context,
	req domain.CheckoutRequest,
	session *domain.CheckoutSession,
	payment *domain.Payment) (*domain.CheckoutSession, error) {

	logger := app.loggerFromContext(ctx)

	recorded, err := app.paymentRepo.GetByCheckoutSessionId(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	if recorded.Status == domain.PaymentStatusPending {
		logger.Info("reusing pending checkout session", "checkout_session_id", session.ID)
		return session, nil
	}

	logger.Info("checkout session was already settled, opening a new one",
		"checkout_session_id", session.ID,
		"status", string(recorded.Status),
	)

	req.IdempotencyKey = uuid.NewString()

	session, err = app.requestCheckoutSession(ctx, req)
	if err != nil {
		return nil, err
	}

	payment.CheckoutSessionId = session.ID

	err = app.paymentRepo.Create(ctx, payment)
	if err != nil {
		return nil, err
	}

	return session, nil
}

// checkoutIdempotencyKey is stable for a basket and its priced contents, so a
// creation retried after a lost provider response gets the same session back.
func checkoutIdempotencyKey(basketID, currency string, groups domain.GroupedItems) string {
	var b strings.Builder

	b.WriteString(basketID)
	b.WriteString("|")
	b.WriteString(strings.ToUpper(currency))

	for _, group := range groups.Groups() {
		fmt.Fprintf(&b, "|%s:%d:%s", group.ProductID, group.Quantity(), group.Subtotal().String())
	}

	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(b.String())).String()
}

// priceItems replaces every incoming item by its catalog entry, keeping order and
// repetition.
func (app *Application) priceItems(ctx context.Context, items []domain.Item) ([]domain.Item, error) {
	ids := domain.GroupItems(items).Keys()

	products, err := app.productRepo.GetByIds(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	catalog := make(map[string]domain.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}

	priced := make([]domain.Item, len(items))

	for i, item := range items {
		product, ok := catalog[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProduct, item.ProductID)
		}

		priced[i] = product.ToItem()
	}

	return priced, nil
}

// checkoutErrorStatus maps a creation failure to the status and message reported
// to the caller.
func checkoutErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrBasketEmpty), errors.Is(err, domain.ErrUnknownProduct):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrCheckoutInProgress):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrPaymentProviderUnavailable):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, domain.ErrMissingCheckoutSessionID):
		return http.StatusBadGateway, domain.ErrMissingCheckoutSessionID.Error()
	case errors.Is(err, domain.ErrMissingCheckoutRedirectURL):
		return http.StatusBadGateway, domain.ErrMissingCheckoutRedirectURL.Error()
	default:
		return http.StatusInternalServerError, ErrInternalServer
	}
}

func validationSummary(err error) string {
	msg := ErrFailedValidation

	issues := validationIssues(err)
	if len(issues) > 0 {
		msg = fmt.Sprintf("%s: %s %s", msg, issues[0].Field, issues[0].Issue)
	}

	return msg
}

func (app *Application) StripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to read webhook body: %w", err))
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		r.Header.Get("Stripe-Signature"),
		app.config.Stripe.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		logger.Warn("webhook signature verification failed", "error", err)
		app.badRequestResponse(w, r, errors.New("invalid webhook signature"))
		return
	}

	logger = logger.With("event_id", event.ID, "event_type", string(event.Type))

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var cs stripe.CheckoutSession

		err = json.Unmarshal(event.Data.Raw, &cs)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("failed to parse checkout session: %w", err))
			return
		}

		err = app.completeCheckout(r.Context(), &cs)

	case stripe.EventTypeCheckoutSessionExpired:
		var cs stripe.CheckoutSession

		err = json.Unmarshal(event.Data.Raw, &cs)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("failed to parse checkout session: %w", err))
			return
		}

		err = app.paymentRepo.UpdateStatus(r.Context(), cs.ID, domain.PaymentStatusCanceled, "checkout session expired")

	default:
		logger.Debug("ignoring webhook event")
	}

	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		app.serverErrorResponse(w, r, err)
		return
	}

	if errors.Is(err, domain.ErrRecordNotFound) {
		logger.Warn("webhook references an unknown checkout session")
	}

	w.WriteHeader(http.StatusOK)
}

// completeCheckout marks the payment as completed, empties the paid basket and
// mails a receipt when the customer left an address.
func (app *Application) completeCheckout(ctx context.Context, cs *stripe.CheckoutSession) error {
	logger := app.loggerFromContext(ctx)

	err := app.paymentRepo.UpdateStatus(ctx, cs.ID, domain.PaymentStatusCompleted, "")
	if err != nil {
		return err
	}

	basketID := cs.Metadata["basket_id"]
	if basketID != "" {
		err = app.baskets.Clear(ctx, basketID)
		if err != nil {
			return err
		}
	}

	app.serverMetrics.Checkouts.WithLabelValues("paid").Inc()
	logger.Info("checkout completed", "checkout_session_id", cs.ID, "basket_id", basketID)

	if cs.CustomerDetails == nil || cs.CustomerDetails.Email == "" {
		return nil
	}

	recipient := cs.CustomerDetails.Email
	data := map[string]any{
		"SessionID": cs.ID,
		"Total":     formatPrice(decimal.New(cs.AmountTotal, -2), string(cs.Currency)),
	}

	app.background(context.WithoutCancel(ctx), func(ctx context.Context) {
		err := app.mailer.Send(recipient, "receipt.tmpl", data)
		if err != nil {
			app.loggerFromContext(ctx).Error("failed to send receipt", "checkout_session_id", data["SessionID"], "error", err)
		}
	})

	return nil
}
