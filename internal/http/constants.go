package httpx

// CurrentPage constants define the page identifiers used in templates and navigation.
const (
	PageHome           = "home"
	PageProduct        = "product"
	PageCart           = "cart"
	PageCheckout       = "checkout"
	PagePaymentSuccess = "payment-success"

	PageLogin          = "login"
	PageSignup         = "signup"
	PageForgotPassword = "forgot-password"
	PageResetPassword  = "reset-password"

	PageLoading = "loading"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// SiteName prefixes every document title.
const SiteName = "Storefront"

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageHome:           "home-content",
	PageProduct:        "product-content",
	PageCart:           "cart-content",
	PageCheckout:       "checkout-content",
	PagePaymentSuccess: "payment-success-content",
	PageLogin:          "login-content",
	PageSignup:         "signup-content",
	PageForgotPassword: "forgot-password-content",
	PageResetPassword:  "reset-password-content",
	PageLoading:        "loading-content",
}

// ContentTemplateMap returns the mapping from CurrentPage to template name.
func ContentTemplateMap() map[string]string { return contentTemplates }

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to home-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := ContentTemplateMap()[currentPage]; ok {
		return name
	}
	return "home-content"
}

func pageTitle(title string) string {
	if title == "" {
		return SiteName
	}
	return title + " - " + SiteName
}
