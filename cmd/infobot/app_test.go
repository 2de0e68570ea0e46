package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"infobot/internal/config"
)

// upstream emulates Open-Meteo, the CBR feed, MOEX ISS and the Bot API on one server.
type upstream struct {
	srv  *httptest.Server
	mu   sync.Mutex
	sent []string // text of every sendMessage call
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("/geocode", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "Zzzzz" {
			fmt.Fprint(w, `{}`)
			return
		}
		fmt.Fprint(w, `{"results":[{"name":"Moscow","latitude":55.75,"longitude":37.62}]}`)
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"current_weather":{"temperature":5,"windspeed":3.6,"weathercode":0,"is_day":1,"time":"2024-05-01T12:00"}}`)
	})
	mux.HandleFunc("/daily_json.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		fmt.Fprint(w, `{"Valute":{"USD":{"CharCode":"USD","Value":95.50,"Previous":95.00},"EUR":{"CharCode":"EUR","Value":100,"Previous":100}}}`)
	})
	mux.HandleFunc("/securities/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/securities/SBER.json" {
			fmt.Fprint(w, `{"securities":{"data":[]},"marketdata":{"data":[]}}`)
			return
		}
		fmt.Fprint(w, `{"securities":{"data":[["SBER","TQBR","Сбербанк"]]},"marketdata":{"data":[["SBER","TQBR",null,null,null,null,0,0,0,0,0,0,300.1,1,0.33]]}}`)
	})
	mux.HandleFunc("/bottest-token-123/getMe", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Info","username":"info_bot"}}`)
	})
	mux.HandleFunc("/bottest-token-123/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		u.mu.Lock()
		u.sent = append(u.sent, r.PostForm.Get("text"))
		u.mu.Unlock()
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`)
	})
	u.srv = httptest.NewServer(mux)
	t.Cleanup(u.srv.Close)
	return u
}

func (u *upstream) messages() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.sent...)
}

func (u *upstream) config() *config.Config {
	cfg := config.Defaults()
	cfg.Telegram.Token = "test-token-123"
	cfg.Telegram.APIEndpoint = u.srv.URL + "/bot%s/%s"
	cfg.Upstream.GeocodingURL = u.srv.URL + "/geocode"
	cfg.Upstream.ForecastURL = u.srv.URL + "/forecast"
	cfg.Upstream.RatesURL = u.srv.URL + "/daily_json.js"
	cfg.Upstream.StockURL = u.srv.URL + "/securities"
	cfg.Upstream.Timeout = 2 * time.Second
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestApp_EndToEnd(t *testing.T) {
	u := newUpstream(t)
	cfg := u.config()

	bot, err := newBot(cfg)
	if err != nil {
		t.Fatalf("bot: %v", err)
	}
	routes := newApp(cfg, bot, quietLogger()).webhook.Routes()

	cases := []struct {
		text string
		want []string
	}{
		{"/start", []string{"/weather [city]"}},
		{"/weather", []string{"🏙️ Moscow", "5°C", "☀️ Clear"}},
		{"/weather Zzzzz", []string{"not found", "Zzzzz"}},
		{"/exchange", []string{"USD: 95.5 ₽ 📈 +0.5", "EUR: 100.0 ₽ ➡️ 0.0"}},
		{"/stock sber", []string{"Сбербанк (SBER)", "300.1 ₽", "📈", "+1.00 (+0.33%)"}},
		{"/stock nope", []string{"'NOPE' not found"}},
		{"/stock", []string{"Usage: /stock [ticker]"}},
		{"hello", []string{`You said: "hello"`}},
	}

	for i, tc := range cases {
		body := fmt.Sprintf(`{"update_id":%d,"message":{"message_id":%d,"date":0,"chat":{"id":77,"type":"private"},"text":%q}}`, i, i, tc.text)
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body)))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
			t.Fatalf("%q: response %d %s", tc.text, rec.Code, rec.Body.String())
		}

		msgs := u.messages()
		if len(msgs) != i+1 {
			t.Fatalf("%q: sent %d messages, want %d", tc.text, len(msgs), i+1)
		}
		for _, want := range tc.want {
			if !strings.Contains(msgs[i], want) {
				t.Errorf("%q: reply %q missing %q", tc.text, msgs[i], want)
			}
		}
	}
}

func TestApp_NoMessageNoSend(t *testing.T) {
	u := newUpstream(t)
	cfg := u.config()
	bot, err := newBot(cfg)
	if err != nil {
		t.Fatalf("bot: %v", err)
	}
	routes := newApp(cfg, bot, quietLogger()).webhook.Routes()

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"update_id":1}`)))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("response %d %s", rec.Code, rec.Body.String())
	}
	if n := len(u.messages()); n != 0 {
		t.Errorf("sent %d messages, want 0", n)
	}
}

func TestRunChecks(t *testing.T) {
	logger = quietLogger()
	u := newUpstream(t)
	cfg := u.config()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)

	var out bytes.Buffer
	r := runChecks(t.Context(), &out, cfg, "sber")
	if r.failed != 0 {
		t.Fatalf("expected all checks to pass:\n%s", out.String())
	}
	if r.passed != 6 {
		t.Errorf("passed = %d, want 6:\n%s", r.passed, out.String())
	}
}

func TestRunChecks_Failures(t *testing.T) {
	logger = quietLogger()
	u := newUpstream(t)
	cfg := u.config()
	cfg.Telegram.Token = ""
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)

	var out bytes.Buffer
	r := runChecks(t.Context(), &out, cfg, "NOPE")
	// config validation, token and stock probe
	if r.failed != 3 {
		t.Errorf("failed = %d, want 3:\n%s", r.failed, out.String())
	}
	if !strings.Contains(out.String(), "[FAIL] Telegram token") {
		t.Errorf("missing token failure:\n%s", out.String())
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	_, port, _ := net.SplitHostPort(ln.Addr().String())
	p, _ := strconv.Atoi(port)
	return p
}
