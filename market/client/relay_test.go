package client

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRelay speaks just enough of the relay protocol for client tests: REQ is
// answered with the stored events and an EOSE, EVENT with an OK, and CLOSE
// frames are recorded so teardown can be asserted.
type fakeRelay struct {
	srv *httptest.Server

	mu     sync.Mutex
	stored []nostr.Event

	closed chan string
}

func newFakeRelay(t *testing.T) *fakeRelay {
	t.Helper()
	f := &fakeRelay{closed: make(chan string, 16)}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			return
		}
		go f.serve(conn)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeRelay) url() string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http")
}

func (f *fakeRelay) store(ev nostr.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = append(f.stored, ev)
}

func (f *fakeRelay) serve(conn net.Conn) {
	defer conn.Close()
	for {
		data, err := wsutil.ReadClientText(conn)
		if err != nil {
			return
		}
		var frame []json.RawMessage
		if json.Unmarshal(data, &frame) != nil || len(frame) < 2 {
			continue
		}
		var label string
		if json.Unmarshal(frame[0], &label) != nil {
			continue
		}
		switch label {
		case "REQ":
			var subID string
			if json.Unmarshal(frame[1], &subID) != nil {
				continue
			}
			f.mu.Lock()
			stored := append([]nostr.Event(nil), f.stored...)
			f.mu.Unlock()
			for _, ev := range stored {
				b, _ := json.Marshal(ev)
				wsutil.WriteServerText(conn, []byte(`["EVENT","`+subID+`",`+string(b)+`]`))
			}
			wsutil.WriteServerText(conn, []byte(`["EOSE","`+subID+`"]`))
		case "CLOSE":
			var subID string
			if json.Unmarshal(frame[1], &subID) != nil {
				continue
			}
			select {
			case f.closed <- subID:
			default:
			}
		case "EVENT":
			var ev nostr.Event
			if json.Unmarshal(frame[1], &ev) != nil {
				continue
			}
			wsutil.WriteServerText(conn, []byte(`["OK","`+ev.ID+`",true,""]`))
		}
	}
}

func (f *fakeRelay) drainCloses() {
	for {
		select {
		case <-f.closed:
		default:
			return
		}
	}
}

func connectedClient(t *testing.T, f *fakeRelay) *Client {
	t.Helper()
	sk := nostr.GeneratePrivateKey()
	c, err := New([]string{f.url()}, sk)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestReceiveMessageTimeoutReturnsSentinel(t *testing.T) {
	f := newFakeRelay(t)
	c := connectedClient(t, f)
	f.drainCloses()

	start := time.Now()
	msg, err := c.ReceiveMessage(300 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, noMessage(), msg)
	assert.Less(t, time.Since(start), 3*time.Second)

	// the inbox subscription must be torn down after the timeout
	select {
	case <-f.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not closed after the receive timeout")
	}
}

func TestReceiveMessageReadsBacklog(t *testing.T) {
	f := newFakeRelay(t)
	sender := testClient(t)

	sk := nostr.GeneratePrivateKey()
	pk, err := nostr.GetPublicKey(sk)
	require.NoError(t, err)
	dm, err := sender.encodeLegacyMessage(pk, "table for two")
	require.NoError(t, err)
	f.store(dm)

	c, err := New([]string{f.url()}, sk)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	msg, err := c.ReceiveMessage(3 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "kind:4", msg.Type)
	assert.Equal(t, sender.keys.Account(), msg.Sender)
	assert.Equal(t, "table for two", msg.Content)
}

func TestMessageStillDeliveredAfterEarlierTimeout(t *testing.T) {
	f := newFakeRelay(t)
	c := connectedClient(t, f)
	sender := testClient(t)

	msg, err := c.ReceiveMessage(150 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, noMessage(), msg)

	dm, err := sender.encodeLegacyMessage(c.keys.Account(), "still open?")
	require.NoError(t, err)
	f.store(dm)

	msg, err = c.ReceiveMessage(3 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "still open?", msg.Content)
}

func TestPublishAgainstRelay(t *testing.T) {
	f := newFakeRelay(t)
	c := connectedClient(t, f)

	id, err := c.PublishNote("open for lunch")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
