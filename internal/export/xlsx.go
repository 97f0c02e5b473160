// Package export writes stored insights to spreadsheets.
package export

import (
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/storefront-insights/internal/model"
)

// Sheet names written by WriteXLSX.
const (
	InsightsSheet = "Insights"
	ProductsSheet = "Products"
)

var insightHeader = []string{
	"ID", "Website URL", "Brand Name", "Status", "Recognized Platform",
	"Products", "Hero Products", "FAQs", "Average Price",
	"Emails", "Phones",
	"Instagram", "Facebook", "Twitter", "TikTok", "YouTube", "Pinterest",
	"Created At", "Error",
}

var productHeader = []string{
	"Website URL", "Product ID", "Title", "Handle", "Vendor", "Category", "Price", "URL", "Hero",
}

// SaveXLSX writes insights to a new workbook at path.
func SaveXLSX(path string, insights []model.StorefrontInsight) error {
	f, err := build(insights)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

// WriteXLSX writes insights as a workbook to w.
func WriteXLSX(w io.Writer, insights []model.StorefrontInsight) error {
	f, err := build(insights)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "export: write workbook")
}

func build(insights []model.StorefrontInsight) (*xlsx.File, error) {
	f := xlsx.NewFile()

	summary, err := f.AddSheet(InsightsSheet)
	if err != nil {
		return nil, eris.Wrap(err, "export: add insights sheet")
	}
	products, err := f.AddSheet(ProductsSheet)
	if err != nil {
		return nil, eris.Wrap(err, "export: add products sheet")
	}

	addStrings(summary.AddRow(), insightHeader...)
	addStrings(products.AddRow(), productHeader...)

	for i := range insights {
		in := &insights[i]
		writeInsightRow(summary.AddRow(), in)
		for _, p := range in.ProductCatalog {
			writeProductRow(products.AddRow(), in.WebsiteURL, p)
		}
		for _, p := range in.HeroProducts {
			writeProductRow(products.AddRow(), in.WebsiteURL, p)
		}
	}
	return f, nil
}

func writeInsightRow(row *xlsx.Row, in *model.StorefrontInsight) {
	addStrings(row, in.ID, in.WebsiteURL, in.BrandName, string(in.Status))
	row.AddCell().SetBool(in.IsRecognizedPlatform)
	row.AddCell().SetInt(len(in.ProductCatalog))
	row.AddCell().SetInt(len(in.HeroProducts))
	row.AddCell().SetInt(len(in.FAQs))
	if avg, ok := in.AveragePrice(); ok {
		row.AddCell().SetFloat(avg)
	} else {
		row.AddCell().SetString("")
	}
	addStrings(row,
		strings.Join(in.ContactDetails.Emails, ", "),
		strings.Join(in.ContactDetails.Phones, ", "),
	)
	for _, p := range model.AllPlatforms() {
		addStrings(row, in.SocialHandles.Get(p))
	}
	created := ""
	if !in.CreatedAt.IsZero() {
		created = in.CreatedAt.UTC().Format(time.RFC3339)
	}
	addStrings(row, created, in.ErrorMessage)
}

func writeProductRow(row *xlsx.Row, site string, p model.Product) {
	addStrings(row, site)
	row.AddCell().SetInt64(p.ID)
	addStrings(row, p.Title, p.Handle, p.Vendor, p.Category)
	row.AddCell().SetFloat(p.Price)
	addStrings(row, p.URL)
	row.AddCell().SetBool(p.IsHero)
}

func addStrings(row *xlsx.Row, values ...string) {
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
