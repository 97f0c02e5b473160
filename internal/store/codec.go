package store

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/storefront-insights/internal/db"
	"github.com/sells-group/storefront-insights/internal/model"
)

// insightColumns is the column order shared by SELECT lists and the upsert.
var insightColumns = []string{
	"id",
	"website_url",
	"brand_name",
	"product_catalog",
	"hero_products",
	"privacy_policy",
	"refund_policy",
	"brand_context",
	"faqs",
	"contact_details",
	"social_handles",
	"important_links",
	"is_recognized_platform",
	"status",
	"error_message",
	"created_at",
	"updated_at",
}

var insightSelect = "SELECT " + strings.Join(insightColumns, ", ") + " FROM storefront_insights"

// On conflict the existing row keeps its id and created_at.
func insightUpsert(d db.Dialect) string {
	var update []string
	for _, c := range insightColumns {
		switch c {
		case "id", "website_url", "created_at":
		default:
			update = append(update, c)
		}
	}
	return db.MustUpsertSQL(d, db.UpsertConfig{
		Table:        "storefront_insights",
		Columns:      insightColumns,
		ConflictKeys: []string{"website_url"},
		UpdateCols:   update,
		Returning:    []string{"id"},
	})
}

var competitorColumns = []string{
	"id",
	"brand_insight_id",
	"competitor_url",
	"insights",
	"similarity_score",
	"error",
	"created_at",
}

var competitorSelect = "SELECT " + strings.Join(competitorColumns, ", ") + " FROM competitor_analyses"

// insightDocs holds the JSON-encoded nested fields of an insight.
type insightDocs struct {
	Catalog []byte
	Hero    []byte
	FAQs    []byte
	Contact []byte
	Social  []byte
	Links   []byte
}

func encodeDocs(in *model.StorefrontInsight) (insightDocs, error) {
	cp := *in
	cp.Normalize()

	var d insightDocs
	var err error
	if d.Catalog, err = json.Marshal(cp.ProductCatalog); err != nil {
		return d, eris.Wrap(err, "store: marshal product catalog")
	}
	if d.Hero, err = json.Marshal(cp.HeroProducts); err != nil {
		return d, eris.Wrap(err, "store: marshal hero products")
	}
	if d.FAQs, err = json.Marshal(cp.FAQs); err != nil {
		return d, eris.Wrap(err, "store: marshal faqs")
	}
	if d.Contact, err = json.Marshal(cp.ContactDetails); err != nil {
		return d, eris.Wrap(err, "store: marshal contact details")
	}
	if d.Social, err = json.Marshal(cp.SocialHandles); err != nil {
		return d, eris.Wrap(err, "store: marshal social handles")
	}
	if d.Links, err = json.Marshal(cp.ImportantLinks); err != nil {
		return d, eris.Wrap(err, "store: marshal important links")
	}
	return d, nil
}

func (d insightDocs) decodeInto(in *model.StorefrontInsight) error {
	fields := []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"product catalog", d.Catalog, &in.ProductCatalog},
		{"hero products", d.Hero, &in.HeroProducts},
		{"faqs", d.FAQs, &in.FAQs},
		{"contact details", d.Contact, &in.ContactDetails},
		{"social handles", d.Social, &in.SocialHandles},
		{"important links", d.Links, &in.ImportantLinks},
	}
	for _, f := range fields {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return eris.Wrapf(err, "store: unmarshal %s", f.name)
		}
	}
	in.Normalize()
	return nil
}

// nullable maps "" to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// traceStatement logs a statement when statement logging is enabled.
func (o options) traceStatement(backend, op, query string) {
	if !o.logStatements {
		return
	}
	zap.L().Debug("store: statement",
		zap.String("backend", backend),
		zap.String("op", op),
		zap.String("sql", strings.Join(strings.Fields(query), " ")),
	)
}

func marshalSnapshot(in *model.StorefrontInsight) ([]byte, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal competitor snapshot")
	}
	return raw, nil
}

func unmarshalSnapshot(raw []byte) (*model.StorefrontInsight, error) {
	var in model.StorefrontInsight
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal competitor snapshot")
	}
	in.Normalize()
	return &in, nil
}
