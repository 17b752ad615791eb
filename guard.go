package activerecord

import (
	"strings"

	"github.com/go-gorm/activerecord/utils"
)

// Fillable replace the mass assignment whitelist of this instance
func (m *Model) Fillable(names ...string) *Model {
	m.fillable = append([]string{}, names...)
	return m
}

// GetFillable the mass assignment whitelist
func (m *Model) GetFillable() []string {
	return append([]string{}, m.fillable...)
}

// MergeFillable add names to the whitelist
func (m *Model) MergeFillable(names ...string) *Model {
	m.fillable = utils.AppendUnique(m.fillable, names...)
	return m
}

// Guard replace the mass assignment blacklist of this instance, "*" guards everything
func (m *Model) Guard(names ...string) *Model {
	m.guarded = append([]string{}, names...)
	return m
}

// GetGuarded the mass assignment blacklist
func (m *Model) GetGuarded() []string {
	return append([]string{}, m.guarded...)
}

// MergeGuarded add names to the blacklist
func (m *Model) MergeGuarded(names ...string) *Model {
	m.guarded = utils.AppendUnique(m.guarded, names...)
	return m
}

func (m *Model) guardsEverything() bool {
	return len(m.guarded) == 1 && m.guarded[0] == "*"
}

// IsGuarded reports whether key is blacklisted
func (m *Model) IsGuarded(key string) bool {
	if m.guardsEverything() || utils.Contains(m.guarded, key) {
		return true
	}
	if root, _, ok := strings.Cut(key, jsonPathSeparator); ok {
		return utils.Contains(m.guarded, root)
	}
	return false
}

// IsFillable reports whether key may be mass assigned
func (m *Model) IsFillable(key string) bool {
	if m.forceFilling || m.registry().IsUnguarded() {
		return true
	}

	if utils.Contains(m.fillable, key) {
		return true
	}
	if root, _, ok := strings.Cut(key, jsonPathSeparator); ok && utils.Contains(m.fillable, root) {
		return true
	}

	if m.IsGuarded(key) {
		return false
	}
	return len(m.fillable) == 0 && !strings.HasPrefix(key, "_")
}

// TotallyGuarded reports whether nothing is fillable and everything is guarded
func (m *Model) TotallyGuarded() bool {
	return len(m.fillable) == 0 && m.guardsEverything()
}

// Fill mass assign attrs. Keys starting with _ are always skipped, other non fillable keys
// are skipped unless the model is totally guarded, which fails with *MassAssignmentError.
func (m *Model) Fill(attrs map[string]interface{}) error {
	totallyGuarded := m.TotallyGuarded()

	for _, key := range sortedKeys(attrs) {
		name := removeTableFromKey(key)
		if strings.HasPrefix(name, "_") {
			continue
		}

		if m.IsFillable(name) {
			if err := m.Set(name, attrs[key]); err != nil {
				return err
			}
		} else if totallyGuarded {
			return &MassAssignmentError{Attribute: key, Model: m.def.Name}
		}
	}
	return nil
}

// ForceFill mass assign attrs bypassing the fillable and guarded lists
func (m *Model) ForceFill(attrs map[string]interface{}) error {
	previous := m.forceFilling
	m.forceFilling = true
	defer func() { m.forceFilling = previous }()

	return m.Fill(attrs)
}

func removeTableFromKey(key string) string {
	if strings.Contains(key, jsonPathSeparator) {
		return key
	}
	if idx := strings.LastIndexByte(key, '.'); idx >= 0 {
		return key[idx+1:]
	}
	return key
}
