package eventservices

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const chainHeader = "Expiration Date,Calls,Last Sale,Net,Bid,Ask,Volume,IV,Delta,Gamma,Open Interest,Strike,Puts,Last Sale,Net,Bid,Ask,Volume,IV,Delta,Gamma,Open Interest"

type chainLine struct {
	expire  string
	strike  string
	callBid string
	callAsk string
	putBid  string
	putAsk  string
}

func (l chainLine) String() string {
	return strings.Join([]string{
		l.expire, "SPXW240830C0" + l.strike, "1.1", "0.05", l.callBid, l.callAsk, "1204", "0.1512", "0.02", "0.0003", "5120",
		l.strike, "SPXW240830P0" + l.strike, "2.1", "-0.1", l.putBid, l.putAsk, "88", "0.2412", "-0.03", "0.0004", "901",
	}, ",")
}

func chainFileContent(underlyingLast string, lines ...chainLine) string {
	var b strings.Builder
	b.WriteString("SPX,S&P 500 INDEX\n")
	fmt.Fprintf(&b, "Date: Jul 15 2024 at 4:15 PM EDT,Last: %s,Bid: 5630.5,Ask: 5632.0\n", underlyingLast)
	b.WriteString("Volume: 0\n")
	b.WriteString("\n")
	b.WriteString(chainHeader + "\n")
	for _, l := range lines {
		b.WriteString(l.String() + "\n")
	}
	return b.String()
}

func writeChainFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
