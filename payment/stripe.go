// Package payment creates hosted checkout sessions for orders.
package payment

import (
	"context"
	"fmt"
	"math"
	"net/url"

	"localchef-api/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// StripeGateway builds Stripe Checkout sessions whose success redirect carries
// the order id and amount so the front end can record the payment.
type StripeGateway struct {
	client     *session.Client
	siteDomain string
	currency   string
}

func NewStripeGateway(secret, siteDomain string) *StripeGateway {
	return &StripeGateway{
		client:     &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secret},
		siteDomain: siteDomain,
		currency:   string(stripe.CurrencyUSD),
	}
}

func (g *StripeGateway) CreateCheckout(ctx context.Context, intent models.PaymentIntent) (string, error) {
	successURL, cancelURL := RedirectTargets(g.siteDomain, intent)

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(g.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(intent.MealName),
					},
					UnitAmount: stripe.Int64(Cents(intent.Price)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx
	params.AddMetadata("orderId", intent.OrderID)

	s, err := g.client.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return s.URL, nil
}

// RedirectTargets returns the success and cancel URLs for a checkout.
// {CHECKOUT_SESSION_ID} is substituted by Stripe and must stay unescaped.
func RedirectTargets(siteDomain string, intent models.PaymentIntent) (string, string) {
	success := fmt.Sprintf("%s/dashboard/payment-success?orderId=%s&amount=%s&transactionId={CHECKOUT_SESSION_ID}",
		siteDomain, url.QueryEscape(intent.OrderID), url.QueryEscape(fmt.Sprintf("%g", intent.Price)))
	cancel := siteDomain + "/dashboard/orders"
	return success, cancel
}

// Cents converts a price in dollars to the smallest currency unit
func Cents(price float64) int64 {
	return int64(math.Round(price * 100))
}
