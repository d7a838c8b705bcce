package e2e

import (
	"context"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/screener/internal/server"
	"github.com/abelbrown/screener/internal/store"
)

// fixtureCSV is a small snapshot in the service's CSV layout. Beta has no
// ROE and Delta has no P/E.
const fixtureCSV = `Stock Name,Market Capitalization,P/E Ratio,ROE,Debt/Equity Ratio,Dividend Yield,Revenue Growth,EPS Growth,Current Ratio,Gross Margin
Alpha Corp,1500.5,18.2,22.5,0.4,1.2,8.5,10.1,1.8,45
Beta Ltd,320,12.1,,1.1,3.4,2.0,-1.5,1.1,30
Gamma Inc,95,40.3,5.5,0.2,0,25,30,2.5,60
Delta plc,780,,14,0.9,2.1,4.4,6.0,1.4,38
`

// startService seeds an in-memory store from csv and serves it.
func startService(t *testing.T, csv string) *httptest.Server {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if _, err := st.ImportCSV(context.Background(), strings.NewReader(csv)); err != nil {
		t.Fatalf("import fixture: %v", err)
	}

	srv, err := server.New(server.Config{Source: st})
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func readSnapshot(f *os.File) string {
	if err := f.SetReadDeadline(time.Now().Add(50 * time.Millisecond)); err != nil {
		return ""
	}
	out := make([]byte, 0, 8192)
	buf := make([]byte, 4096)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err != nil {
			break
		}
	}
	return string(out)
}
