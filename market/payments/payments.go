package payments

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"agora/market/models"
	"github.com/fiatjaf/go-lnurl"
	decodepay "github.com/nbd-wtf/ln-decodepay"
)

// Buyer-side lightning helpers: resolve a merchant's lud16 address to an
// LNURL-pay endpoint, request an invoice for an order total, and decode a
// bolt11 invoice received in a payment request so the amount can be checked
// before paying. Nothing here moves funds.

var httpClient = &http.Client{Timeout: 10 * time.Second}

// PayEndpoint is the LNURL-pay service descriptor returned by the
// .well-known endpoint.
type PayEndpoint struct {
	Callback    string `json:"callback"`
	MaxSendable int64  `json:"maxSendable"`
	MinSendable int64  `json:"minSendable"`
	Metadata    string `json:"metadata"`
	Tag         string `json:"tag"`
}

type payInvoice struct {
	Pr     string     `json:"pr"`
	Routes []struct{} `json:"routes"`
}

// Lud16ToURL turns a lightning address into its LNURL-pay service URL.
func Lud16ToURL(address string) (string, error) {
	name, domain, found := strings.Cut(strings.TrimSpace(address), "@")
	if !found || name == "" || domain == "" {
		return "", fmt.Errorf("%w: invalid lightning address %q", models.ErrValidation, address)
	}
	return "https://" + strings.Trim(domain, "<>") + "/.well-known/lnurlp/" + strings.Trim(name, "<>"), nil
}

// Lud16ToLNURL bech32-encodes the service URL of a lightning address.
func Lud16ToLNURL(address string) (string, error) {
	serviceURL, err := Lud16ToURL(address)
	if err != nil {
		return "", err
	}
	return lnurl.Encode(serviceURL)
}

// FetchPayEndpoint resolves an lnurl (bech32) or plain https link to its
// LNURL-pay descriptor.
func FetchPayEndpoint(link string) (PayEndpoint, error) {
	var endpoint PayEndpoint
	serviceURL := link
	if strings.HasPrefix(strings.ToLower(link), "lnurl") {
		decoded, err := lnurl.LNURLDecode(link)
		if err != nil {
			return endpoint, fmt.Errorf("%w: undecodable lnurl", models.ErrValidation)
		}
		serviceURL = decoded
	}
	resp, err := httpClient.Get(serviceURL)
	if err != nil {
		return endpoint, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return endpoint, err
	}
	if err := json.Unmarshal(body, &endpoint); err != nil {
		return endpoint, err
	}
	if endpoint.Callback == "" {
		return endpoint, fmt.Errorf("%w: pay endpoint has no callback", models.ErrValidation)
	}
	return endpoint, nil
}

// RequestInvoice asks the pay endpoint for a bolt11 invoice over the given
// amount in millisatoshis.
func RequestInvoice(endpoint PayEndpoint, amountMsat int64, comment string) (string, error) {
	if endpoint.MinSendable > 0 && amountMsat < endpoint.MinSendable {
		return "", fmt.Errorf("%w: amount %d below minimum %d", models.ErrValidation, amountMsat, endpoint.MinSendable)
	}
	if endpoint.MaxSendable > 0 && amountMsat > endpoint.MaxSendable {
		return "", fmt.Errorf("%w: amount %d above maximum %d", models.ErrValidation, amountMsat, endpoint.MaxSendable)
	}
	callback, err := url.Parse(endpoint.Callback)
	if err != nil {
		return "", err
	}
	query := callback.Query()
	query.Set("amount", strconv.FormatInt(amountMsat, 10))
	if comment != "" {
		query.Set("comment", comment)
	}
	callback.RawQuery = query.Encode()

	resp, err := httpClient.Get(callback.String())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var invoice payInvoice
	if err := json.Unmarshal(body, &invoice); err != nil {
		return "", err
	}
	if invoice.Pr == "" {
		return "", fmt.Errorf("%w: pay endpoint returned no invoice", models.ErrValidation)
	}
	return invoice.Pr, nil
}

// DecodeInvoice parses a bolt11 invoice.
func DecodeInvoice(invoice string) (decodepay.Bolt11, error) {
	return decodepay.Decodepay(strings.TrimSpace(invoice))
}

// CheckPaymentOption decodes the bolt11 link of a payment option and verifies
// it asks for the expected amount. Non-lightning options pass through
// unchecked.
func CheckPaymentOption(option models.PaymentOption, expectedMsat int64) error {
	if !strings.EqualFold(option.Type, "ln") {
		return nil
	}
	bolt11, err := DecodeInvoice(option.Link)
	if err != nil {
		return fmt.Errorf("%w: undecodable invoice: %s", models.ErrValidation, err)
	}
	if expectedMsat > 0 && bolt11.MSatoshi != expectedMsat {
		return fmt.Errorf("%w: invoice asks for %d msat, expected %d", models.ErrValidation, bolt11.MSatoshi, expectedMsat)
	}
	return nil
}
