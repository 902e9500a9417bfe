package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tokengate/internal/aws"
	"tokengate/internal/config"
	"tokengate/internal/kv"
	"tokengate/internal/razorpay"
	"tokengate/internal/token"
	"tokengate/internal/validation"
)

// paymentIDAliases are the query-parameter names under which the provider's
// browser redirect may carry the payment identifier.
var paymentIDAliases = []string{
	"razorpay_payment_id",
	"razorpay_payment_link_id",
	"payment_id",
}

// webhook events that confirm a completed payment and mint a token
var honoredEvents = map[string]bool{
	"payment.captured":  true,
	"payment_link.paid": true,
}

// Deps groups dependencies for the token-gate routes.
type Deps struct {
	Config    *config.Config
	Logger    *zap.Logger
	Store     kv.Store
	Provider  *razorpay.Client
	Publisher *aws.Publisher // optional; nil disables issuance events
}

// issuanceEvent is the message published to the queue after a webhook mints a token.
type issuanceEvent struct {
	Token     string `json:"token"`
	PaymentID string `json:"payment_id"`
	Event     string `json:"event"`
}

// RegisterRoutes wires every endpoint onto r.
func RegisterRoutes(r *gin.Engine, d Deps) {
	v := validation.New()
	issuer := token.NewIssuer(d.Store, d.Config.Tokens.PurchaseTTL, d.Logger)
	gate := token.NewGate(d.Store, d.Logger)
	views := token.NewViewManager(d.Store, d.Config.Tokens.ViewTTL, d.Logger)
	resolver := token.NewClaimResolver(d.Store, d.Logger)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/admin/issue-token", func(c *gin.Context) {
		secret := d.Config.Server.AdminSecret
		presented := c.GetHeader("X-Admin-Secret")
		if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(presented)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req validation.IssueTokenRequest
		if c.Request.ContentLength > 0 {
			if err := validation.BindAndValidate(c, &req, v); err != nil {
				return
			}
		}

		tok, err := issuer.Issue(c.Request.Context(), token.Metadata{
			PaymentID: req.PaymentID,
			Event:     req.Event,
			Extra:     req.Extra,
		})
		if err != nil {
			d.Logger.Error("admin issuance failed",
				zap.String("payment_id", req.PaymentID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "issuance_failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"token": tok})
	})

	r.POST("/razorpay-webhook", func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable_body"})
			return
		}

		sig := c.GetHeader("X-Razorpay-Signature")
		if !razorpay.VerifyWebhookSignature(body, sig, d.Config.Razorpay.WebhookSecret) {
			// no detail leaks to an unauthenticated caller
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_signature"})
			return
		}

		ev, err := razorpay.ParseWebhookEvent(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
			return
		}
		if !honoredEvents[ev.Event] {
			c.JSON(http.StatusOK, gin.H{"status": "ignored", "event": ev.Event})
			return
		}

		paymentID := ev.PaymentID()
		if paymentID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_payment_id"})
			return
		}

		meta := token.Metadata{PaymentID: paymentID, Event: ev.Event}
		if amt := ev.Payload.Payment.Entity.Amount; amt > 0 {
			meta.Extra = map[string]interface{}{"amount": amt}
		}

		tok, err := issuer.Issue(c.Request.Context(), meta)
		if err != nil {
			d.Logger.Error("webhook issuance failed",
				zap.String("payment_id", paymentID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "issuance_failed"})
			return
		}

		// issuance event is best-effort; the buyer's token is already safe
		if d.Publisher != nil {
			msg, _ := json.Marshal(issuanceEvent{Token: tok, PaymentID: paymentID, Event: ev.Event})
			attrs := map[string]string{
				"payment_id":     paymentID,
				"correlation_id": c.GetHeader("X-Request-Id"),
			}
			if err := d.Publisher.SendIssuanceMessage(c.Request.Context(), string(msg), attrs); err != nil {
				d.Logger.Warn("issuance event publish failed",
					zap.String("payment_id", paymentID),
					zap.Error(err))
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/claim-return", func(c *gin.Context) {
		var paymentID string
		for _, alias := range paymentIDAliases {
			if val := c.Query(alias); val != "" {
				paymentID = val
				break
			}
		}
		if paymentID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_payment_id"})
			return
		}

		tok, err := resolver.Resolve(c.Request.Context(), paymentID)
		if errors.Is(err, token.ErrClaimNotFound) {
			c.JSON(http.StatusGone, gin.H{"error": "link_expired_or_not_found"})
			return
		}
		if err != nil {
			d.Logger.Error("claim resolution failed",
				zap.String("payment_id", paymentID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "resolution_failed"})
			return
		}

		// fragment keeps the token out of request logs on the setup host
		c.Redirect(http.StatusFound, d.Config.Server.SetupBaseURL+"#token="+tok)
	})

	r.POST("/create-payment-link", func(c *gin.Context) {
		var req validation.CreatePaymentLinkRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		link, err := d.Provider.CreatePaymentLink(c.Request.Context(), razorpay.PaymentLinkRequest{
			Amount:      req.Amount,
			Currency:    req.Currency,
			Description: req.Description,
			CallbackURL: d.Config.Server.PublicBaseURL + "/claim-return",
			Notes:       req.Notes,
		})
		if err != nil {
			d.Logger.Error("payment link creation failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "provider_unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": link.ID, "short_url": link.ShortURL})
	})

	r.POST("/generate", func(c *gin.Context) {
		rec, ok := verifyPurchase(c, gate, d.Logger, bearerOrQueryToken(c))
		if !ok {
			return
		}

		var req validation.GenerateRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		viewTok, err := views.Exchange(c.Request.Context(), rec, req.SetupPayload, req.ViewToken)
		if err != nil {
			d.Logger.Error("view token exchange failed",
				zap.String("payment_id", rec.PaymentID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "exchange_failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"view_token": viewTok,
			"url":        d.Config.Server.ViewBaseURL + "?token=" + viewTok,
		})
	})

	r.GET("/verify-purchase", func(c *gin.Context) {
		rec, ok := verifyPurchase(c, gate, d.Logger, bearerOrQueryToken(c))
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"payment_id": rec.PaymentID,
			"event":      rec.Event,
			"created_at": rec.CreatedAt,
			"extra":      rec.Extra,
		})
	})

	r.GET("/validate-view", func(c *gin.Context) {
		tok := c.Query("token")
		rec, err := views.Validate(c.Request.Context(), tok)
		if errors.Is(err, token.ErrNoToken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_token"})
			return
		}
		if errors.Is(err, token.ErrTokenInvalid) {
			c.JSON(http.StatusNotFound, gin.H{"error": "token_not_found"})
			return
		}
		if err != nil {
			d.Logger.Error("view validation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "validation_failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"setup_payload": rec.SetupPayload,
			"order_meta":    rec.OrderMeta,
			"created_at":    rec.CreatedAt,
			"updated_at":    rec.UpdatedAt,
		})
	})
}

// bearerOrQueryToken pulls the purchase token from the Authorization header
// (bearer scheme) or the token query parameter.
func bearerOrQueryToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return c.Query("token")
}

// verifyPurchase runs the gate and writes the rejection response itself, so
// callers can simply bail out. "no token" and "bad token" surface as distinct
// machine-readable codes for client messaging.
func verifyPurchase(c *gin.Context, gate *token.Gate, logger *zap.Logger, tok string) (*token.PurchaseRecord, bool) {
	rec, err := gate.Verify(c.Request.Context(), tok)
	switch {
	case errors.Is(err, token.ErrNoToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
		return nil, false
	case errors.Is(err, token.ErrTokenInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_or_expired_token"})
		return nil, false
	case err != nil:
		logger.Error("purchase verification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification_failed"})
		return nil, false
	}
	return rec, true
}
