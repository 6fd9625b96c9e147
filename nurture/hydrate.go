package nurture

import (
	"strings"

	"nurtura/models"
)

// Hydrate substitutes the known placeholders in a step template with the
// lead's field values. Missing fields become empty strings; placeholders
// outside the known set are left untouched so a malformed template
// degrades gracefully instead of blocking enrollment.
func Hydrate(template string, lead models.Lead) string {
	replacer := strings.NewReplacer(
		"{{firstName}}", lead.FirstName,
		"{{lastName}}", lead.LastName,
		"{{phone}}", lead.Phone,
	)
	return replacer.Replace(template)
}
