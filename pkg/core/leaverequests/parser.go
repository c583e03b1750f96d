package leaverequests

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

// Kind distinguishes hard leave from a soft preference
type Kind string

const (
	KindPTO     Kind = "PTO"
	KindNonCall Kind = "Non-call"
)

// Request is a single date range extracted from a message
type Request struct {
	Resident string
	Kind     Kind
	Dates    model.DateRange
}

var (
	paragraphSplit = regexp.MustCompile(`\n\s*\n`)
	dateRangeRe    = regexp.MustCompile(`(?i)Start Date:\s*([^\n]+?)\s*End Date:\s*([^\n]+)`)
)

var sectionPrefixes = []struct {
	prefix string
	kind   Kind
}{
	{"pto:", KindPTO},
	{"non-call:", KindNonCall},
}

// ParseBody extracts requests from a message body. The subject names the resident.
// Paragraphs starting "PTO:" yield leave and paragraphs starting "Non-call:" yield soft
// constraints; each contains one or more "Start Date: ... End Date: ..." pairs. Pairs with
// unparseable dates are returned as errors and skipped.
func ParseBody(subject, body string) ([]Request, []error) {
	resident := strings.TrimSpace(subject)
	if resident == "" {
		return nil, nil
	}

	var (
		requests []Request
		errs     []error
	)
	body = strings.ReplaceAll(body, "\r\n", "\n")
	for _, paragraph := range paragraphSplit.Split(body, -1) {
		paragraph = strings.TrimSpace(paragraph)
		lower := strings.ToLower(paragraph)

		for _, section := range sectionPrefixes {
			if !strings.HasPrefix(lower, section.prefix) {
				continue
			}
			text := paragraph[len(section.prefix):]
			for _, m := range dateRangeRe.FindAllStringSubmatch(text, -1) {
				start, err := model.ParseDate(m[1])
				if err != nil {
					errs = append(errs, fmt.Errorf("%s %s start date: %w", resident, section.kind, err))
					continue
				}
				end, err := model.ParseDate(m[2])
				if err != nil {
					errs = append(errs, fmt.Errorf("%s %s end date: %w", resident, section.kind, err))
					continue
				}
				if end.Before(start) {
					errs = append(errs, fmt.Errorf("%s %s range ends before it starts: %s to %s", resident, section.kind, m[1], m[2]))
					continue
				}
				requests = append(requests, Request{
					Resident: resident,
					Kind:     section.kind,
					Dates:    model.DateRange{Start: start, End: end},
				})
			}
			break
		}
	}

	return requests, errs
}

// ParseMessage parses a raw RFC 822 message and extracts requests from its first
// text/plain part
func ParseMessage(raw []byte) ([]Request, []error, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read message: %w", err)
	}

	dec := new(mime.WordDecoder)
	subject, err := dec.DecodeHeader(msg.Header.Get("Subject"))
	if err != nil {
		subject = msg.Header.Get("Subject")
	}

	body, err := plainTextBody(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read body of %q: %w", subject, err)
	}

	requests, parseErrs := ParseBody(subject, body)
	return requests, parseErrs, nil
}

func plainTextBody(contentType, transferEncoding string, r io.Reader) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// No usable content type: treat as plain text
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := multipart.NewReader(r, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				return "", nil
			}
			if err != nil {
				return "", err
			}
			body, err := plainTextBody(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part)
			if err != nil {
				return "", err
			}
			if body != "" {
				return body, nil
			}
		}
	}

	if mediaType != "text/plain" {
		return "", nil
	}

	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return decodeText(data), nil
}

// decodeText returns data as UTF-8, falling back to Latin-1 for invalid input
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
