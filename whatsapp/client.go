// Package whatsapp talks to Meta's WhatsApp Business (Graph) API: template
// message sends plus catalog proxying for the message-center UI.
package whatsapp

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const graphBaseURL = "https://graph.facebook.com/v19.0"

// ErrTemplateNotFound maps Graph error code 100 on template deletion.
var ErrTemplateNotFound = errors.New("template not found or cannot be deleted")

// Sender dispatches one template message. The messaging service depends on
// this interface so tests can record payloads instead of calling Meta.
type Sender interface {
	SendTemplate(ctx context.Context, msg Message) (string, error)
}

// Client is a thin resty wrapper over the Graph API.
type Client struct {
	http              *resty.Client
	messagesURL       string
	token             string
	businessAccountID string
}

// NewClient builds a Graph API client. messagesURL is the full send endpoint
// (phone-number scoped); businessAccountID scopes the template catalog.
func NewClient(messagesURL, token, businessAccountID string) *Client {
	return &Client{
		http:              resty.New(),
		messagesURL:       messagesURL,
		token:             token,
		businessAccountID: businessAccountID,
	}
}

type graphError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type graphErrorResponse struct {
	Error graphError `json:"error"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendTemplate posts one message and returns the provider message id.
func (c *Client) SendTemplate(ctx context.Context, msg Message) (string, error) {
	var out sendResponse
	var apiErr graphErrorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetHeader("Content-Type", "application/json").
		SetBody(msg).
		SetResult(&out).
		SetError(&apiErr).
		Post(c.messagesURL)
	if err != nil {
		return "", fmt.Errorf("send to %s: %w", msg.To, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("send to %s: %s", msg.To, graphErrorString(apiErr, resp))
	}
	if len(out.Messages) == 0 {
		return "", nil
	}
	return out.Messages[0].ID, nil
}

type graphTemplate struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Language   string `json:"language"`
	Category   string `json:"category"`
	Components []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"components"`
}

type templateListResponse struct {
	Data []graphTemplate `json:"data"`
}

// CatalogEntry is the template-list shape the message-center UI consumes.
type CatalogEntry struct {
	ID               string   `json:"id"`
	MessagingProduct string   `json:"messaging_product"`
	Type             string   `json:"type"`
	Category         string   `json:"category"`
	Template         Template `json:"template"`
}

// ListTemplates fetches the business account's approved templates and
// reshapes them into ready-to-send definitions: HEADER/BODY/FOOTER text
// becomes a single text parameter the parameter modal can edit.
func (c *Client) ListTemplates(ctx context.Context) ([]CatalogEntry, error) {
	var out templateListResponse
	var apiErr graphErrorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetResult(&out).
		SetError(&apiErr).
		Get(fmt.Sprintf("%s/%s/message_templates", graphBaseURL, c.businessAccountID))
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list templates: %s", graphErrorString(apiErr, resp))
	}

	entries := make([]CatalogEntry, 0, len(out.Data))
	for _, t := range out.Data {
		category := t.Category
		if category == "" {
			category = "utility"
		}
		lang := t.Language
		if lang == "" {
			lang = "en"
		}

		components := make([]Component, 0, len(t.Components))
		for _, comp := range t.Components {
			switch comp.Type {
			case "HEADER", "BODY", "FOOTER":
				components = append(components, Component{
					Type:       comp.Type,
					Parameters: []Parameter{{Type: "text", Text: comp.Text}},
				})
			default:
				components = append(components, Component{Type: comp.Type})
			}
		}

		entries = append(entries, CatalogEntry{
			ID:               t.ID,
			MessagingProduct: "whatsapp",
			Type:             "template",
			Category:         category,
			Template: Template{
				Name:       t.Name,
				Language:   Language{Code: lang},
				Components: components,
			},
		})
	}
	return entries, nil
}

// DeleteTemplate removes a template by name and id from the business account.
func (c *Client) DeleteTemplate(ctx context.Context, templateID, templateName string) error {
	var apiErr graphErrorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetQueryParams(map[string]string{
			"name":   templateName,
			"hsm_id": templateID,
		}).
		SetError(&apiErr).
		Delete(fmt.Sprintf("%s/%s/message_templates", graphBaseURL, c.businessAccountID))
	if err != nil {
		return fmt.Errorf("delete template %s: %w", templateName, err)
	}
	if resp.IsError() {
		if apiErr.Error.Code == 100 {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("delete template %s: %s", templateName, graphErrorString(apiErr, resp))
	}
	return nil
}

func graphErrorString(apiErr graphErrorResponse, resp *resty.Response) string {
	if apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return resp.Status()
}
