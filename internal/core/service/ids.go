package service

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

const (
	idLength   = 9
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// generateID returns a random 9 character base36 identifier, the form the
// sheets already use for record and user IDs.
func generateID() string {
	b := make([]byte, idLength)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// fallback: current nanoseconds in base36
			s := strconv.FormatInt(time.Now().UnixNano(), 36)
			return s[len(s)-idLength:]
		}
		b[i] = idAlphabet[n.Int64()]
	}
	return string(b)
}

type noopAuditor struct{}

func (noopAuditor) Record(domain.AuditEvent) {}

func auditorOrNoop(a ports.Auditor) ports.Auditor {
	if a == nil {
		return noopAuditor{}
	}
	return a
}

var (
	_ ports.RecordService  = (*RecordService)(nil)
	_ ports.ReportService  = (*ReportService)(nil)
	_ ports.AuthService    = (*AuthService)(nil)
	_ ports.UserService    = (*UserService)(nil)
	_ ports.ChatService    = (*ChatService)(nil)
	_ ports.SessionService = (*SessionService)(nil)
)
