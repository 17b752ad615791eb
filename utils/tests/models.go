package tests

import (
	"strings"

	"github.com/go-gorm/activerecord"
)

// Models definitions shared by tests
//
// User has one Account (has one), many Pets (has many) and Toys (has many - polymorphic)
// He works in a Company (belongs to) and speaks many Languages (many to many)
// His pet belongs to him and has one Toy (has one - polymorphic)
type Models struct {
	Company  *activerecord.Definition
	User     *activerecord.Definition
	Account  *activerecord.Definition
	Pet      *activerecord.Definition
	Toy      *activerecord.Definition
	Language *activerecord.Definition
}

// DefineModels declare the test models on r
func DefineModels(r *activerecord.Registry) *Models {
	models := &Models{}

	models.Company = r.Define("Company",
		activerecord.WithFillable("name"),
	)

	models.Language = r.Define("Language",
		activerecord.WithFillable("code", "name"),
		activerecord.WithoutTimestamps(),
	)

	models.User = r.Define("User",
		activerecord.WithFillable("name", "age", "birthday", "active", "company_id", "settings", "password"),
		activerecord.WithHidden("password"),
		activerecord.WithCasts(map[string]string{
			"age":      "integer",
			"active":   "boolean",
			"birthday": "date",
			"settings": "json",
		}),
		activerecord.WithAccessor("display_name", func(m *activerecord.Model, value interface{}) (interface{}, error) {
			name, err := m.GetAttributeValue("name")
			if err != nil || name == nil {
				return nil, err
			}
			return strings.ToUpper(name.(string)), nil
		}),
		activerecord.WithRelation("account", func(m *activerecord.Model) *activerecord.Relation {
			return m.HasOne(models.Account, "", "")
		}),
		activerecord.WithRelation("pets", func(m *activerecord.Model) *activerecord.Relation {
			return m.HasMany(models.Pet, "", "")
		}),
		activerecord.WithRelation("toys", func(m *activerecord.Model) *activerecord.Relation {
			return m.MorphMany(models.Toy, "owner", "", "", "")
		}),
		activerecord.WithRelation("company", func(m *activerecord.Model) *activerecord.Relation {
			return m.BelongsTo(models.Company, "", "", "")
		}),
		activerecord.WithRelation("languages", func(m *activerecord.Model) *activerecord.Relation {
			return m.BelongsToMany(models.Language, "", "", "", "", "", "")
		}),
	)

	models.Account = r.Define("Account",
		activerecord.WithFillable("number", "user_id"),
		activerecord.WithTouches("user"),
		activerecord.WithRelation("user", func(m *activerecord.Model) *activerecord.Relation {
			return m.BelongsTo(models.User, "", "", "")
		}),
	)

	models.Pet = r.Define("Pet",
		activerecord.WithFillable("name", "user_id"),
		activerecord.WithTouches("user"),
		activerecord.WithRelation("user", func(m *activerecord.Model) *activerecord.Relation {
			return m.BelongsTo(models.User, "", "", "")
		}),
		activerecord.WithRelation("toy", func(m *activerecord.Model) *activerecord.Relation {
			return m.MorphOne(models.Toy, "owner", "", "", "")
		}),
	)

	models.Toy = r.Define("Toy",
		activerecord.WithFillable("name", "owner_id", "owner_type"),
		activerecord.WithRelation("owner", func(m *activerecord.Model) *activerecord.Relation {
			return m.MorphTo("", "", "", "")
		}),
	)

	return models
}
