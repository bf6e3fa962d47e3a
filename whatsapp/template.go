package whatsapp

import (
	"regexp"
	"strings"

	"github.com/nishantd01/sheetdesk/models"
)

// TemplateDefinition is the provider template wrapper the frontend submits.
type TemplateDefinition struct {
	ID       string   `json:"id,omitempty"`
	Template Template `json:"template"`
}

// Template mirrors the Graph API template object.
type Template struct {
	Name       string      `json:"name"`
	Language   Language    `json:"language"`
	Components []Component `json:"components"`
}

type Language struct {
	Code string `json:"code"`
}

type Component struct {
	Type       string      `json:"type"`
	Parameters []Parameter `json:"parameters,omitempty"`
}

type Parameter struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Image *Media `json:"image,omitempty"`
	Video *Media `json:"video,omitempty"`
}

type Media struct {
	Link string `json:"link"`
}

// Message is the outbound per-recipient payload.
type Message struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Template         Template `json:"template"`
}

const (
	// CountryPrefix is prepended to bare 10-digit numbers.
	CountryPrefix = "91"

	defaultLanguage = "en_US"
)

var (
	nonDigits  = regexp.MustCompile(`\D+`)
	validPhone = regexp.MustCompile(`^` + CountryPrefix + `\d{10}$`)
	whitespace = regexp.MustCompile(`\s+`)
)

// NormalizePhone strips non-digits, prefixes bare 10-digit numbers with the
// country code and validates the final 12-digit form. Numbers that do not
// normalize are excluded from the send set.
func NormalizePhone(number string) (string, bool) {
	formatted := nonDigits.ReplaceAllString(strings.TrimSpace(number), "")
	if len(formatted) == 10 {
		formatted = CountryPrefix + formatted
	}
	if !validPhone.MatchString(formatted) {
		return "", false
	}
	return formatted, true
}

// SubstituteParams flattens whitespace and resolves {{N}} placeholders from
// the recipient's paramN data map. Placeholders without a matching key are
// left as literal text.
func SubstituteParams(text string, data map[string]string) string {
	clean := strings.TrimSpace(whitespace.ReplaceAllString(strings.ReplaceAll(text, "\n", " "), " "))
	for key, value := range data {
		n, ok := strings.CutPrefix(key, "param")
		if !ok {
			continue
		}
		clean = strings.ReplaceAll(clean, "{{"+n+"}}", value)
	}
	return clean
}

// resolveComponents substitutes per-recipient parameters into the body
// component. Header and footer components pass through unchanged.
func resolveComponents(components []Component, recipient models.Recipient) []Component {
	out := make([]Component, len(components))
	for i, comp := range components {
		if !strings.EqualFold(comp.Type, "body") {
			out[i] = comp
			continue
		}
		params := make([]Parameter, len(comp.Parameters))
		for j, p := range comp.Parameters {
			if p.Type == "text" {
				p.Text = SubstituteParams(p.Text, recipient.Data)
			}
			params[j] = p
		}
		out[i] = Component{Type: comp.Type, Parameters: params}
	}
	return out
}

// BuildMessage assembles the outbound payload for one recipient. When a
// media URL is present the pre-approved text_image/text_video template is
// used with the message as its single body parameter; otherwise the selected
// template is sent with per-recipient parameter substitution.
func BuildMessage(def TemplateDefinition, recipient models.Recipient, mediaURL, mediaKind, message string) Message {
	if mediaURL != "" {
		name := "text_image"
		headerParam := Parameter{Type: "image", Image: &Media{Link: mediaURL}}
		if mediaKind == "video" {
			name = "text_video"
			headerParam = Parameter{Type: "video", Video: &Media{Link: mediaURL}}
		}
		return Message{
			MessagingProduct: "whatsapp",
			To:               recipient.Phone,
			Type:             "template",
			Template: Template{
				Name:     name,
				Language: Language{Code: defaultLanguage},
				Components: []Component{
					{Type: "header", Parameters: []Parameter{headerParam}},
					{Type: "body", Parameters: []Parameter{{Type: "text", Text: message}}},
				},
			},
		}
	}

	lang := def.Template.Language.Code
	if lang == "" {
		lang = defaultLanguage
	}
	return Message{
		MessagingProduct: "whatsapp",
		To:               recipient.Phone,
		Type:             "template",
		Template: Template{
			Name:       def.Template.Name,
			Language:   Language{Code: lang},
			Components: resolveComponents(def.Template.Components, recipient),
		},
	}
}
