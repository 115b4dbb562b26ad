package catalog

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/brewline/storefront/internal/domain/shared"
)

var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Theme holds optional color overrides used when rendering a category.
// Empty fields fall back to the shop theme.
type Theme struct {
	Background string `json:"background,omitempty"`
	Header     string `json:"header,omitempty"`
	Card       string `json:"card,omitempty"`
	Text       string `json:"text,omitempty"`
}

// IsEmpty reports whether no override is set
func (t Theme) IsEmpty() bool {
	return t.Background == "" && t.Header == "" && t.Card == "" && t.Text == ""
}

// Category represents a menu section
type Category struct {
	shared.BaseAggregateRoot
	Name      string `json:"name"`
	Theme     *Theme `json:"theme,omitempty"`
	SortOrder int    `json:"sort_order"`
}

// NewCategory creates a new category
func NewCategory(name string, theme *Theme) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	if err := validateTheme(theme); err != nil {
		return nil, err
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Theme:             normalizeTheme(theme),
	}

	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// Update renames the category and replaces its theme overrides
func (c *Category) Update(name string, theme *Theme) error {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}
	if err := validateTheme(theme); err != nil {
		return err
	}

	c.Name = name
	c.Theme = normalizeTheme(theme)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCategoryUpdatedEvent(c))

	return nil
}

// SetSortOrder sets the display order
func (c *Category) SetSortOrder(order int) {
	c.SortOrder = order
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// MarkDeleted records the deletion event
func (c *Category) MarkDeleted() {
	c.AddDomainEvent(NewCategoryDeletedEvent(c))
}

// Clone returns a copy without pending events
func (c *Category) Clone() *Category {
	clone := *c
	clone.ClearDomainEvents()
	if c.Theme != nil {
		theme := *c.Theme
		clone.Theme = &theme
	}
	return &clone
}

func normalizeTheme(theme *Theme) *Theme {
	if theme == nil || theme.IsEmpty() {
		return nil
	}
	t := *theme
	return &t
}

// validateCategoryName validates the category name
func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}

// validateTheme checks that every set color is a #RGB or #RRGGBB hex value
func validateTheme(theme *Theme) error {
	if theme == nil {
		return nil
	}
	for _, color := range []string{theme.Background, theme.Header, theme.Card, theme.Text} {
		if color != "" && !hexColorPattern.MatchString(color) {
			return shared.NewDomainError("INVALID_THEME", "Theme color \""+color+"\" is not a hex color")
		}
	}
	return nil
}
