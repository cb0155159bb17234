package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jesseruder/electric-lullaby/internal/models"
)

const (
	EndpointLogin     = "login"
	EndpointSignup    = "signup"
	EndpointFollow    = "follow"
	EndpointPushToken = "pushToken"
	EndpointImageURLs = "imageUrls"
	EndpointSendImage = "sendImage"
	EndpointUpload    = "upload"
)

// Client talks to the photo backend rooted at a fixed base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithHTTPClient swaps the underlying http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Call sends payload as JSON to baseURL/endpoint and decodes the JSON object
// in the response. The status code is not inspected.
func (c *Client) Call(ctx context.Context, endpoint, method string, payload any) (map[string]any, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Endpoint: endpoint, Kind: ErrTransport, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Endpoint: endpoint, Kind: ErrTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Content-Type", "application/json")

	return c.do(endpoint, req)
}

func (c *Client) do(endpoint string, req *http.Request) (map[string]any, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Endpoint: endpoint, Kind: ErrTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Endpoint: endpoint, Kind: ErrTransport, Err: err}
	}

	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &Error{Endpoint: endpoint, Kind: ErrDecode, Err: err}
	}
	if out == nil {
		return nil, &Error{Endpoint: endpoint, Kind: ErrDecode, Err: fmt.Errorf("response is not an object")}
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) (map[string]any, error) {
	return c.Call(ctx, endpoint, http.MethodPost, payload)
}

// stringField extracts a non-empty string field or reports a domain failure.
func stringField(endpoint string, resp map[string]any, field string) (string, error) {
	if v, ok := resp[field].(string); ok && v != "" {
		return v, nil
	}
	msg, _ := resp["error"].(string)
	return "", &Error{Endpoint: endpoint, Kind: ErrDomain, Err: &MissingField{Field: field, Message: msg}}
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	return c.authenticate(ctx, EndpointLogin, username, password)
}

func (c *Client) Signup(ctx context.Context, username, password string) (string, error) {
	return c.authenticate(ctx, EndpointSignup, username, password)
}

func (c *Client) authenticate(ctx context.Context, endpoint, username, password string) (string, error) {
	resp, err := c.post(ctx, endpoint, models.Credentials{Username: username, Password: password})
	if err != nil {
		return "", err
	}
	return stringField(endpoint, resp, "token")
}

// Follow asks the backend to deliver userToFollow's photos to this account.
func (c *Client) Follow(ctx context.Context, token, userToFollow string) error {
	_, err := c.post(ctx, EndpointFollow, models.FollowRequest{Token: token, UserToFollow: userToFollow})
	return err
}

func (c *Client) RegisterPushToken(ctx context.Context, token, pushToken string) error {
	_, err := c.post(ctx, EndpointPushToken, models.PushTokenRequest{Token: token, PushToken: pushToken})
	return err
}

// ImageURLs fetches the pending image URLs. Without a token no request is made.
func (c *Client) ImageURLs(ctx context.Context, token string) ([]string, error) {
	if token == "" {
		return nil, nil
	}

	resp, err := c.post(ctx, EndpointImageURLs, models.ImageURLsRequest{Token: token})
	if err != nil {
		return nil, err
	}

	raw, ok := resp["urls"].([]any)
	if !ok {
		msg, _ := resp["error"].(string)
		return nil, &Error{Endpoint: EndpointImageURLs, Kind: ErrDomain, Err: &MissingField{Field: "urls", Message: msg}}
	}
	urls := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			urls = append(urls, s)
		}
	}
	return urls, nil
}

func (c *Client) SendImage(ctx context.Context, token, url string) error {
	_, err := c.post(ctx, EndpointSendImage, models.SendImageRequest{Token: token, URL: url})
	return err
}

// UploadPhoto posts the file at localPath as the multipart part "photo" and
// returns the location the backend stored it at.
func (c *Client) UploadPhoto(ctx context.Context, localPath string) (string, error) {
	body, contentType, err := photoForm(localPath)
	if err != nil {
		return "", &Error{Endpoint: EndpointUpload, Kind: ErrTransport, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+EndpointUpload, body)
	if err != nil {
		return "", &Error{Endpoint: EndpointUpload, Kind: ErrTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(EndpointUpload, req)
	if err != nil {
		return "", err
	}
	return stringField(EndpointUpload, resp, "location")
}

// FileType is the extension of path without the dot, lower-cased.
func FileType(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func photoForm(localPath string) (*bytes.Buffer, string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	fileType := FileType(localPath)
	if fileType == "" {
		return nil, "", fmt.Errorf("cannot infer image type of %s", localPath)
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename="photo.%s"`, fileType))
	h.Set("Content-Type", "image/"+fileType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
