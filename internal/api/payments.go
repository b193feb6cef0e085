package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// Upload is one file attached to a multipart payment request. Open is
// invoked once per request attempt, so a request retried after token
// renewal re-reads the file from the start instead of submitting the
// drained reader of the first attempt.
type Upload struct {
	Field    string
	Filename string
	Open     func() (io.ReadCloser, error)
}

// CreatePremiumPayment submits a premium-promotion purchase as
// multipart/form-data and returns the payment intent the user must
// complete out of band.
func (c *Client) CreatePremiumPayment(ctx context.Context, token string, fields map[string]string, uploads []Upload) (*PaymentIntent, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to write form field %q: %w", key, err)
		}
	}

	for _, upload := range uploads {
		part, err := writer.CreateFormFile(upload.Field, upload.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file %q: %w", upload.Filename, err)
		}

		reader, err := upload.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload %q: %w", upload.Filename, err)
		}
		if _, err := io.Copy(part, reader); err != nil {
			reader.Close()
			return nil, fmt.Errorf("failed to write form file %q: %w", upload.Filename, err)
		}
		reader.Close()
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	var resp paymentCreateResponse
	err := c.do(ctx, http.MethodPost, "/payments/create-premium-payment", token, &buf, writer.FormDataContentType(), &resp)
	if err != nil {
		return nil, err
	}

	return &resp.Data, nil
}

// CheckPaymentStatus queries the status of an outstanding payment by
// its reference. The returned value is the raw backend status string
// (pending, success, completed, failed or cancelled).
func (c *Client) CheckPaymentStatus(ctx context.Context, token, reference string) (string, error) {
	var resp paymentStatusResponse
	path := "/payments/check-status/" + url.PathEscape(reference)
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}
