// Package seed loads the first-run catalog from a YAML file.
package seed

import (
	"errors"
	"fmt"
	"os"
	"strings"

	appcatalog "github.com/brewline/storefront/internal/application/catalog"
	"github.com/brewline/storefront/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrSeedNotFound is returned when the seed file does not exist
var ErrSeedNotFound = errors.New("seed: file not found")

// File is the YAML document layout.
//
//	categories:
//	  - ref: coffee
//	    name: Coffee
//	    theme: {background: "#3b2a1a"}
//	products:
//	  - name: Latte
//	    price: "24"
//	    categories: [coffee]
//	    sizes: [{name: Large, price_modifier: "5"}]
//	    has_hot: true
type File struct {
	Categories []CategorySeed `yaml:"categories"`
	Products   []ProductSeed  `yaml:"products"`
}

// CategorySeed is one category entry. Ref defaults to the name.
type CategorySeed struct {
	Ref   string         `yaml:"ref"`
	Name  string         `yaml:"name"`
	Theme *catalog.Theme `yaml:"theme"`
}

// ProductSeed is one product entry. Categories lists category refs.
type ProductSeed struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Image       string     `yaml:"image"`
	Price       string     `yaml:"price"`
	PromoPrice  string     `yaml:"promo_price"`
	IsPromo     bool       `yaml:"is_promo"`
	Categories  []string   `yaml:"categories"`
	Sizes       []SizeSeed `yaml:"sizes"`
	HasHot      bool       `yaml:"has_hot"`
	HasCold     bool       `yaml:"has_cold"`
}

// SizeSeed is one size option
type SizeSeed struct {
	Name          string `yaml:"name"`
	PriceModifier string `yaml:"price_modifier"`
}

// YAMLSource implements catalog.SeedSource over a file path
type YAMLSource struct {
	path string
}

var _ appcatalog.SeedSource = (*YAMLSource)(nil)

// NewYAMLSource creates a source reading path on every Seed call
func NewYAMLSource(path string) *YAMLSource {
	return &YAMLSource{path: path}
}

// Seed reads and converts the file
func (s *YAMLSource) Seed() (*appcatalog.Seed, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSeedNotFound, s.path)
		}
		return nil, fmt.Errorf("reading seed: %w", err)
	}
	return Parse(data)
}

// Parse converts a YAML document into domain objects. Every entry goes through
// the same constructors as API input, so a seed cannot hold invalid data.
func Parse(data []byte) (*appcatalog.Seed, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}

	out := &appcatalog.Seed{
		Categories: make([]*catalog.Category, 0, len(f.Categories)),
		Products:   make([]*catalog.Product, 0, len(f.Products)),
	}

	refs := make(map[string]uuid.UUID, len(f.Categories))
	for i, cs := range f.Categories {
		ref := cs.Ref
		if ref == "" {
			ref = cs.Name
		}
		if _, dup := refs[ref]; dup {
			return nil, fmt.Errorf("category %d: duplicate ref %q", i, ref)
		}
		c, err := catalog.NewCategory(cs.Name, cs.Theme)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", cs.Name, err)
		}
		c.SetSortOrder(i)
		refs[ref] = c.ID
		out.Categories = append(out.Categories, c)
	}

	for _, ps := range f.Products {
		details, err := ps.details(refs)
		if err != nil {
			return nil, fmt.Errorf("product %q: %w", ps.Name, err)
		}
		p, err := catalog.NewProduct(details)
		if err != nil {
			return nil, fmt.Errorf("product %q: %w", ps.Name, err)
		}
		out.Products = append(out.Products, p)
	}
	return out, nil
}

func (ps ProductSeed) details(refs map[string]uuid.UUID) (catalog.ProductDetails, error) {
	price, err := parseAmount("price", ps.Price)
	if err != nil {
		return catalog.ProductDetails{}, err
	}

	d := catalog.ProductDetails{
		Name:        ps.Name,
		Description: ps.Description,
		Image:       ps.Image,
		Price:       price,
		IsPromo:     ps.IsPromo,
		HasHot:      ps.HasHot,
		HasCold:     ps.HasCold,
	}

	if strings.TrimSpace(ps.PromoPrice) != "" {
		promo, err := parseAmount("promo_price", ps.PromoPrice)
		if err != nil {
			return d, err
		}
		d.PromoPrice = &promo
	}

	for _, ref := range ps.Categories {
		id, ok := refs[ref]
		if !ok {
			return d, fmt.Errorf("unknown category ref %q", ref)
		}
		d.CategoryIDs = append(d.CategoryIDs, id)
	}

	for _, ss := range ps.Sizes {
		mod := decimal.Zero
		if strings.TrimSpace(ss.PriceModifier) != "" {
			if mod, err = parseAmount("price_modifier", ss.PriceModifier); err != nil {
				return d, err
			}
		}
		d.Sizes = append(d.Sizes, catalog.Size{Name: ss.Name, PriceModifier: mod})
	}
	return d, nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %q is not a number", field, raw)
	}
	return v, nil
}
