package mailsync

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/agencyhub/marketing_backend/models"
	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

const sourceName = "mail"

// Mailbox is the subset of an IMAP session used by the sync.
type Mailbox interface {
	Login(username, password string) error
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	Search(criteria *imap.SearchCriteria) ([]uint32, error)
	Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	Logout() error
}

type Dialer func(host string, port int) (Mailbox, error)

// DialTLS opens an implicit TLS session.
func DialTLS(host string, port int) (Mailbox, error) {
	if port <= 0 {
		port = 993
	}
	addr := net.JoinHostPort(host, fmt.Sprint(port))
	c, err := client.DialWithDialerTLS(&net.Dialer{Timeout: 30 * time.Second}, addr, &tls.Config{ServerName: host})
	if err != nil {
		return nil, err
	}
	c.Timeout = time.Minute
	return c, nil
}

// fetchLatest returns the raw bodies of the newest max messages of folder.
// BODY.PEEK[] leaves the \Seen flag untouched.
func fetchLatest(mb Mailbox, folder string, max int, each func(io.Reader) error) error {
	if _, err := mb.Select(folder, true); err != nil {
		return err
	}
	ids, err := mb.Search(imap.NewSearchCriteria())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if max > 0 && len(ids) > max {
		ids = ids[len(ids)-max:]
	}
	seq := new(imap.SeqSet)
	seq.AddNum(ids...)

	section := &imap.BodySectionName{Peek: true}
	ch := make(chan *imap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- mb.Fetch(seq, []imap.FetchItem{section.FetchItem()}, ch)
	}()

	var firstErr error
	for msg := range ch {
		body := msg.GetBody(section)
		if body == nil || firstErr != nil {
			continue
		}
		if err := each(body); err != nil {
			firstErr = err
		}
	}
	if err := <-done; err != nil {
		return err
	}
	return firstErr
}

func formatAddresses(h mail.Header, key string) string {
	list, err := h.AddressList(key)
	if err != nil || len(list) == 0 {
		v, _ := h.Text(key)
		return strings.TrimSpace(v)
	}
	parts := make([]string, 0, len(list))
	for _, a := range list {
		if a.Name != "" {
			parts = append(parts, fmt.Sprintf("%s <%s>", a.Name, a.Address))
		} else {
			parts = append(parts, a.Address)
		}
	}
	return strings.Join(parts, ", ")
}

// parseMessage decodes the headers and keeps only text/plain content. A missing
// or unparsable Date falls back to now.
func parseMessage(r io.Reader, now time.Time) (models.EmailInput, error) {
	var out models.EmailInput
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return out, err
	}
	if mr == nil {
		return out, err
	}
	defer mr.Close()

	out.Subject, _ = mr.Header.Subject()
	out.Sender = formatAddresses(mr.Header, "From")
	out.Recipient = formatAddresses(mr.Header, "To")
	if date, err := mr.Header.Date(); err == nil && !date.IsZero() {
		out.Date = date.UTC()
	} else {
		out.Date = now.UTC()
	}

	var content strings.Builder
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) {
				continue
			}
			break
		}
		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()
		if ct != "" && ct != "text/plain" {
			continue
		}
		b, err := io.ReadAll(p.Body)
		if err != nil {
			continue
		}
		content.Write(b)
	}
	out.Content = content.String()
	return out, nil
}
