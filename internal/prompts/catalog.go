package prompts

import (
	"fmt"
	"sort"
	"strings"
)

type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown prompt field %q", e.Field)
}

type MissingParameterError struct {
	Field string
	Key   string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("prompt %q: missing parameter %q", e.Field, e.Key)
}

// Params are the placeholder values for one render call.
type Params map[string]string

// Catalog maps a content field to its instruction template. Templates use
// {name} placeholders; names are ASCII letters, digits and underscores.
type Catalog struct {
	order     []string
	templates map[string]string
}

// New builds a catalog. order fixes the field sequence returned by Fields; any
// template not named in order is appended alphabetically.
func New(templates map[string]string, order []string) *Catalog {
	c := &Catalog{templates: make(map[string]string, len(templates))}
	seen := map[string]bool{}
	for _, f := range order {
		tpl, ok := templates[f]
		if !ok || seen[f] {
			continue
		}
		seen[f] = true
		c.order = append(c.order, f)
		c.templates[f] = tpl
	}
	var rest []string
	for f, tpl := range templates {
		if !seen[f] {
			rest = append(rest, f)
			c.templates[f] = tpl
		}
	}
	sort.Strings(rest)
	c.order = append(c.order, rest...)
	return c
}

// Fields returns the catalog's field names in generation order.
func (c *Catalog) Fields() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

func (c *Catalog) Has(field string) bool {
	_, ok := c.templates[field]
	return ok
}

// Render substitutes params into the field's template.
func (c *Catalog) Render(field string, params Params) (string, error) {
	tpl, ok := c.templates[field]
	if !ok {
		return "", &UnknownFieldError{Field: field}
	}
	var b strings.Builder
	b.Grow(len(tpl) + 128)
	for i := 0; i < len(tpl); {
		if tpl[i] != '{' {
			b.WriteByte(tpl[i])
			i++
			continue
		}
		end := placeholderEnd(tpl, i+1)
		if end < 0 {
			b.WriteByte(tpl[i])
			i++
			continue
		}
		key := tpl[i+1 : end]
		val, ok := params[key]
		if !ok {
			return "", &MissingParameterError{Field: field, Key: key}
		}
		b.WriteString(val)
		i = end + 1
	}
	return strings.TrimSpace(b.String()), nil
}

// placeholderEnd returns the index of the closing brace of a {name} token
// starting at from, or -1 when the text is not a placeholder.
func placeholderEnd(s string, from int) int {
	for j := from; j < len(s); j++ {
		ch := s[j]
		switch {
		case ch == '}':
			if j == from {
				return -1
			}
			return j
		case ch == '_' || ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z':
		default:
			return -1
		}
	}
	return -1
}

// WithSyllabus prefixes a rendered prompt with syllabus context when present.
func WithSyllabus(prompt, excerpt string) string {
	excerpt = strings.TrimSpace(excerpt)
	if excerpt == "" {
		return prompt
	}
	return "参考教学大纲（节选）：\n" + excerpt + "\n\n" + prompt
}
