package model

// PageKind is a category of secondary storefront page.
type PageKind string

const (
	PageKindPrivacy PageKind = "privacy"
	PageKindRefund  PageKind = "refund"
	PageKindFAQ     PageKind = "faq"
	PageKindAbout   PageKind = "about"
)

// AllPageKinds returns the secondary page kinds in probe order.
func AllPageKinds() []PageKind {
	return []PageKind{
		PageKindPrivacy,
		PageKindRefund,
		PageKindAbout,
		PageKindFAQ,
	}
}

// String implements fmt.Stringer.
func (k PageKind) String() string { return string(k) }
