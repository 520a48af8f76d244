package integration_test

const (
	// Catalog rows seeded by the migrations
	TestProductCamiseta = "camiseta-basica"
	TestProductGorra    = "gorra-clasica"
	TestProductSudadera = "sudadera-capucha"
	TestProductBolsa    = "bolsa-tela"

	// Payment provider related constants
	TestCheckoutSessionId  = "cs_test_integration"
	TestCheckoutSessionURL = "https://checkout.stripe.com/c/pay/cs_test_integration"
	TestWebhookSecret      = "whsec_integration_secret"

	TestCustomerEmail = "cliente@example.com"
)
