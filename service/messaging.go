package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/nishantd01/sheetdesk/media"
	"github.com/nishantd01/sheetdesk/models"
	"github.com/nishantd01/sheetdesk/whatsapp"
)

// Attachment is one uploaded file from the send-whatsapp multipart form.
type Attachment struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// MessagingService uploads attachments and fans out one template message per
// recipient. Sends run concurrently and independently: one failure never
// aborts the batch, and every outcome lands in the results array.
type MessagingService struct {
	uploader media.Uploader
	sender   whatsapp.Sender
}

func NewMessagingService(uploader media.Uploader, sender whatsapp.Sender) *MessagingService {
	return &MessagingService{uploader: uploader, sender: sender}
}

// Dispatch normalizes recipients, uploads attachments and sends the
// template to every valid recipient. Recipients whose phone number fails
// normalization are reported with status "invalid" rather than dropped
// silently.
func (s *MessagingService) Dispatch(ctx context.Context, message string, recipients []models.Recipient, def whatsapp.TemplateDefinition, attachments []Attachment) ([]models.SendResult, error) {
	var valid []models.Recipient
	var results []models.SendResult
	for _, r := range recipients {
		phone, ok := whatsapp.NormalizePhone(r.Phone)
		if !ok {
			results = append(results, models.SendResult{
				Phone:  r.Phone,
				Name:   r.Name,
				Status: "invalid",
				Error:  "invalid phone number",
			})
			continue
		}
		r.Phone = phone
		valid = append(valid, r)
	}
	if len(valid) == 0 {
		return results, ErrNoValidRecipients
	}

	mediaURL, mediaKind, err := s.uploadAttachments(ctx, attachments)
	if err != nil {
		return results, err
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, r := range valid {
		wg.Add(1)
		go func(r models.Recipient) {
			defer wg.Done()
			msg := whatsapp.BuildMessage(def, r, mediaURL, mediaKind, message)
			result := models.SendResult{Phone: r.Phone, Name: r.Name, Status: "success"}
			id, err := s.sender.SendTemplate(ctx, msg)
			if err != nil {
				slog.Warn("whatsapp send failed", "phone", r.Phone, "error", err)
				result.Status = "failed"
				result.Error = err.Error()
			} else {
				result.MessageID = id
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}(r)
	}
	wg.Wait()

	slog.Info("dispatch complete", "recipients", len(valid), "results", len(results))
	return results, nil
}

// uploadAttachments stores each file and returns the first URL plus its
// media kind; only the first attachment lands in the template header.
func (s *MessagingService) uploadAttachments(ctx context.Context, attachments []Attachment) (string, string, error) {
	if len(attachments) == 0 {
		return "", "", nil
	}

	var firstURL string
	for i, att := range attachments {
		url, err := s.uploader.Upload(ctx, att.Reader, att.Filename)
		if err != nil {
			return "", "", err
		}
		if i == 0 {
			firstURL = url
		}
	}

	kind := "video"
	if strings.HasPrefix(attachments[0].ContentType, "image/") {
		kind = "image"
	}
	return firstURL, kind, nil
}
