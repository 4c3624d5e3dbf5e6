package model

// ProviderStatus is the payment status reported by the gateway.
type ProviderStatus string

const (
	ProviderStatusPending   ProviderStatus = "pending"
	ProviderStatusSucceeded ProviderStatus = "succeeded"
	ProviderStatusFailed    ProviderStatus = "failed"
	ProviderStatusCanceled  ProviderStatus = "canceled"
)

// PaymentIntent is the gateway's answer to a payment creation request.
type PaymentIntent struct {
	ProviderRef     string
	ConfirmationURL string
	Status          ProviderStatus
}
