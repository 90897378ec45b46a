package workspace

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"meshwork/internal/catalog"
	"meshwork/internal/config"
)

// titlePattern admits letters, digits, space, hyphen and underscore only
var titlePattern = regexp.MustCompile(`^[A-Za-z0-9 _-]+$`)

// workspaceTitleRules apply to an already trimmed workspace title
func workspaceTitleRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("title is required"),
		validation.RuneLength(1, config.MaxWorkspaceTitleLength),
		validation.Match(titlePattern).Error("title may only contain letters, numbers, spaces, hyphens and underscores"),
	}
}

// collectionTitleRules apply to an already trimmed collection title
func collectionTitleRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("title is required"),
		validation.RuneLength(1, config.MaxCollectionTitleLength),
	}
}

func typeRule(registry *catalog.Registry) validation.Rule {
	return validation.By(func(value interface{}) error {
		if _, ok := registry.GetType(stringValue(value)); !ok {
			return errors.New("unknown workspace type")
		}
		return nil
	})
}

func iconRule(registry *catalog.Registry) validation.Rule {
	return validation.By(func(value interface{}) error {
		if !registry.HasIcon(stringValue(value)) {
			return errors.New("unknown icon")
		}
		return nil
	})
}

// stringValue unwraps string and *string field values
func stringValue(value interface{}) string {
	v, _ := validation.Indirect(value)
	s, _ := v.(string)
	return s
}

// trimPtr trims the string a pointer refers to, in place
func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
