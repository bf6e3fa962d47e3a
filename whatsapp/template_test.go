package whatsapp

import (
	"testing"

	"github.com/nishantd01/sheetdesk/models"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"9876543210", "919876543210", true},
		{"98765-43210", "919876543210", true},
		{"+91 98765 43210", "919876543210", true},
		{"919876543210", "919876543210", true},
		{"12345", "", false},
		{"98765432101234", "", false},
		{"881234567890", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizePhone(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("NormalizePhone(%q) = %q, %v, want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestSubstituteParams(t *testing.T) {
	data := map[string]string{"param1": "Asha", "param2": "Friday"}

	got := SubstituteParams("Hi {{1}}, see you {{2}}!", data)
	if got != "Hi Asha, see you Friday!" {
		t.Errorf("SubstituteParams = %q", got)
	}

	// Placeholders without a matching key stay literal.
	got = SubstituteParams("Hi {{1}}, code {{9}}", data)
	if got != "Hi Asha, code {{9}}" {
		t.Errorf("unmatched placeholder: %q", got)
	}

	// Newlines and runs of whitespace collapse to single spaces.
	got = SubstituteParams("Hi  {{1}},\nsee you", data)
	if got != "Hi Asha, see you" {
		t.Errorf("whitespace flattening: %q", got)
	}

	if got := SubstituteParams("plain text", nil); got != "plain text" {
		t.Errorf("no data: %q", got)
	}
}

func TestBuildMessageTemplate(t *testing.T) {
	def := TemplateDefinition{
		Template: Template{
			Name: "event_reminder",
			Components: []Component{
				{Type: "header", Parameters: []Parameter{{Type: "text", Text: "{{1}}"}}},
				{Type: "body", Parameters: []Parameter{{Type: "text", Text: "Hello {{1}}"}}},
			},
		},
	}
	recipient := models.Recipient{
		Phone: "919876543210",
		Data:  map[string]string{"param1": "Asha"},
	}

	msg := BuildMessage(def, recipient, "", "", "")
	if msg.MessagingProduct != "whatsapp" || msg.Type != "template" {
		t.Fatalf("envelope = %+v", msg)
	}
	if msg.To != "919876543210" {
		t.Errorf("to = %q", msg.To)
	}
	if msg.Template.Name != "event_reminder" {
		t.Errorf("template name = %q", msg.Template.Name)
	}
	if msg.Template.Language.Code != "en_US" {
		t.Errorf("language = %q, want the en_US default", msg.Template.Language.Code)
	}
	// Substitution only touches the body component.
	if got := msg.Template.Components[0].Parameters[0].Text; got != "{{1}}" {
		t.Errorf("header parameter = %q, want untouched", got)
	}
	if got := msg.Template.Components[1].Parameters[0].Text; got != "Hello Asha" {
		t.Errorf("body parameter = %q", got)
	}
}

func TestBuildMessageWithMedia(t *testing.T) {
	recipient := models.Recipient{Phone: "919876543210"}

	msg := BuildMessage(TemplateDefinition{}, recipient, "https://cdn.example.com/a.jpg", "image", "caption here")
	if msg.Template.Name != "text_image" {
		t.Fatalf("template name = %q, want text_image", msg.Template.Name)
	}
	header := msg.Template.Components[0]
	if header.Parameters[0].Image == nil || header.Parameters[0].Image.Link != "https://cdn.example.com/a.jpg" {
		t.Fatalf("header = %+v", header)
	}
	if got := msg.Template.Components[1].Parameters[0].Text; got != "caption here" {
		t.Errorf("body text = %q", got)
	}

	msg = BuildMessage(TemplateDefinition{}, recipient, "https://cdn.example.com/a.mp4", "video", "")
	if msg.Template.Name != "text_video" {
		t.Fatalf("template name = %q, want text_video", msg.Template.Name)
	}
	if msg.Template.Components[0].Parameters[0].Video == nil {
		t.Fatal("video header parameter missing")
	}
}
