// Package httpd exposes the log, the channel names and the clock over a
// small text-only HTTP surface, one exchange per connection. Handlers never
// touch core state directly: each one runs its work as a task on the
// recorder loop, copies what it needs, and streams the response afterwards.
// If the loop cannot take the task in time the client gets 503 "busy".
package httpd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"datalogger-go/bus"
	"datalogger-go/channels"
	"datalogger-go/errcode"
	"datalogger-go/eventlog"
	"datalogger-go/inputs"
	"datalogger-go/services/recorder"
)

// RecentCap bounds the /log view; /dump is uncapped.
const RecentCap = 32

// Fixed response bodies, matching the device's originals.
const (
	bodyNotFound   = "page not found"
	bodyBadRequest = "bad request"
	bodyBusy       = "busy"
	bodyDone       = "done"
	bodyNoData     = "no data"
	bodyTimeSet    = "time updated"
)

const timeLayout = "2006-01-02 15:04:05"

// Server dispatches the request surface.
type Server struct {
	rec  *recorder.Service
	conn *bus.Connection
}

// New builds a server around the recorder loop.
func New(rec *recorder.Service, conn *bus.Connection) *Server {
	return &Server{rec: rec, conn: conn}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.root)
	mux.HandleFunc("/log", s.log)
	mux.HandleFunc("/dump", s.dump)
	mux.HandleFunc("/addr", s.addr)
	mux.HandleFunc("/clr", s.clear)
	mux.HandleFunc("/time", s.time)
	mux.HandleFunc("/cnl", s.channels)
	mux.HandleFunc("/read", s.read)
	return s.instrument(mux)
}

// instrument blips the network activity indicator per request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.conn.Publish(bus.TopicNetActivity, true)
		defer s.conn.Publish(bus.TopicNetActivity, false)
		next.ServeHTTP(w, r)
	})
}

// Serve runs the listener until ctx ends. A listen failure is returned to
// the caller, which degrades to local-only logging rather than halting.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errcode.Wrap(errcode.NetDown, "httpd.listen", err)
	}
	srv := &http.Server{Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errcode.Wrap(errcode.NetDown, "httpd.serve", err)
	}
	return nil
}

func plain(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	fmt.Fprintln(w, body)
}

// do submits fn to the recorder loop and writes the busy response when the
// loop is saturated. Returns false if the handler must stop.
func (s *Server) do(w http.ResponseWriter, fn func()) bool {
	if err := s.rec.Do(fn); err != nil {
		plain(w, http.StatusServiceUnavailable, bodyBusy)
		return false
	}
	return true
}

// streamRecords writes records one per line, flushing as it goes so large
// dumps leave in bounded chunks.
func streamRecords(w http.ResponseWriter, recs []eventlog.Record) {
	if len(recs) == 0 {
		plain(w, http.StatusOK, bodyNoData)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	fl, _ := w.(http.Flusher)
	for _, r := range recs {
		fmt.Fprintln(w, r.Text())
		if fl != nil {
			fl.Flush()
		}
	}
}

// collect drains the retained range on the loop, newest first, up to max
// records (max <= 0 means everything).
func (s *Server) collect(w http.ResponseWriter, max int) ([]eventlog.Record, bool) {
	var recs []eventlog.Record
	var err error
	ok := s.do(w, func() {
		it := s.rec.Store().ReadAll()
		for {
			r, more := it.Next()
			if !more {
				break
			}
			recs = append(recs, r)
			if max > 0 && len(recs) == max {
				break
			}
		}
		err = it.Err()
	})
	if !ok {
		return nil, false
	}
	if err != nil {
		plain(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return recs, true
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		plain(w, http.StatusNotFound, bodyNotFound)
		return
	}
	s.log(w, r)
}

func (s *Server) log(w http.ResponseWriter, _ *http.Request) {
	recs, ok := s.collect(w, RecentCap)
	if !ok {
		return
	}
	streamRecords(w, recs)
}

func (s *Server) dump(w http.ResponseWriter, _ *http.Request) {
	recs, ok := s.collect(w, 0)
	if !ok {
		return
	}
	streamRecords(w, recs)
}

func (s *Server) addr(w http.ResponseWriter, _ *http.Request) {
	var slot, latest, earliest uint16
	if !s.do(w, func() { slot, latest, earliest = s.rec.Store().Addr() }) {
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "HDER %04x\n%04x %04x\n", slot, latest, earliest)
}

func (s *Server) clear(w http.ResponseWriter, _ *http.Request) {
	var err error
	ok := s.do(w, func() {
		var now time.Time
		now, err = s.rec.Clock().Now()
		if err != nil {
			return
		}
		err = s.rec.Store().Clear(now)
	})
	if !ok {
		return
	}
	if err != nil {
		plain(w, http.StatusInternalServerError, err.Error())
		return
	}
	plain(w, http.StatusOK, bodyDone)
}

func (s *Server) time(w http.ResponseWriter, r *http.Request) {
	if r.URL.RawQuery == "" {
		var now time.Time
		var err error
		if !s.do(w, func() { now, err = s.rec.Clock().Now() }) {
			return
		}
		if err != nil {
			plain(w, http.StatusInternalServerError, err.Error())
			return
		}
		plain(w, http.StatusOK, now.Format(timeLayout))
		return
	}

	t, perr := parseTimeQuery(r.URL.RawQuery)
	if perr != nil {
		plain(w, http.StatusBadRequest, bodyBadRequest)
		return
	}
	var now time.Time
	var err error
	ok := s.do(w, func() {
		if err = s.rec.Clock().Set(t); err != nil {
			return
		}
		now, err = s.rec.Clock().Now()
	})
	if !ok {
		return
	}
	if err != nil {
		plain(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, bodyTimeSet)
	fmt.Fprintln(w, now.Format(timeLayout))
}

// parseTimeQuery reads the fixed-offset encoding YYYYMMDDHHMMSS.
func parseTimeQuery(q string) (time.Time, error) {
	if len(q) != 14 {
		return time.Time{}, errcode.BadRequest
	}
	t, err := time.ParseInLocation("20060102150405", q, time.UTC)
	if err != nil {
		return time.Time{}, errcode.BadRequest
	}
	return t, nil
}

func (s *Server) channels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.RawQuery
	switch {
	case q == "":
		s.listChannels(w)
	case q == "reset":
		var err error
		if !s.do(w, func() { err = s.rec.Names().Reset() }) {
			return
		}
		if err != nil {
			plain(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.listChannels(w)
	default:
		bank, line, name, perr := parseRenameQuery(q)
		if perr != nil {
			plain(w, http.StatusBadRequest, bodyBadRequest)
			return
		}
		var err error
		if !s.do(w, func() { err = s.rec.Names().Set(bank, line, name) }) {
			return
		}
		if err != nil {
			if errcode.Of(err) == errcode.BadRequest {
				plain(w, http.StatusBadRequest, bodyBadRequest)
			} else {
				plain(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		s.listChannels(w)
	}
}

// parseRenameQuery reads the fixed-offset encoding b<bank>c<line><name>,
// bank and line as single hex digits, the name as free text up to the slot
// width. Percent escapes in the name are tolerated.
func parseRenameQuery(q string) (bank, line int, name string, err error) {
	if unescaped, uerr := url.QueryUnescape(q); uerr == nil {
		q = unescaped
	}
	if len(q) < 5 || q[0] != 'b' || q[2] != 'c' {
		return 0, 0, "", errcode.BadRequest
	}
	bank = hexDigit(q[1])
	line = hexDigit(q[3])
	if bank < 0 || line < 0 {
		return 0, 0, "", errcode.BadRequest
	}
	name = q[4:]
	if len(name) == 0 || len(name) > channels.LabelSize {
		return 0, 0, "", errcode.BadRequest
	}
	return bank, line, name, nil
}

func hexDigit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

func (s *Server) listChannels(w http.ResponseWriter) {
	var lines []string
	var err error
	ok := s.do(w, func() {
		err = s.rec.Names().List(func(bank, line int, padded string) error {
			lines = append(lines, fmt.Sprintf("b%xc%x %s", bank, line, padded))
			return nil
		})
	})
	if !ok {
		return
	}
	if err != nil {
		plain(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	fl, _ := w.(http.Flusher)
	for _, l := range lines {
		fmt.Fprintln(w, l)
		if fl != nil {
			fl.Flush()
		}
	}
}

func (s *Server) read(w http.ResponseWriter, _ *http.Request) {
	var snaps [inputs.BankCount]uint16
	var err error
	ok := s.do(w, func() {
		for bank := 0; bank < inputs.BankCount && err == nil; bank++ {
			snaps[bank], err = s.rec.RawSnapshot(bank)
		}
	})
	if !ok {
		return
	}
	if err != nil {
		plain(w, http.StatusInternalServerError, err.Error())
		return
	}
	var b strings.Builder
	for bank, snap := range snaps {
		fmt.Fprintf(&b, "b%x %016b\n", bank, snap)
	}
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, b.String())
}
