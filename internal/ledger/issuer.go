package ledger

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
)

// RandomIssuer generates card credentials locally from crypto/rand.
type RandomIssuer struct{}

// IssueCardCredentials returns a 16-digit number, a CVV2 in 1000-9999 and an
// expiry "YY-MM" with YY in 21-32.
func (RandomIssuer) IssueCardCredentials(ctx context.Context) (domain.CardCredentials, error) {
	if err := ctx.Err(); err != nil {
		return domain.CardCredentials{}, err
	}

	var number strings.Builder
	for i := 0; i < 16; i++ {
		d, err := randInt(10)
		if err != nil {
			return domain.CardCredentials{}, err
		}
		number.WriteByte(byte('0' + d))
	}

	cvv, err := randInt(9000)
	if err != nil {
		return domain.CardCredentials{}, err
	}
	month, err := randInt(12)
	if err != nil {
		return domain.CardCredentials{}, err
	}
	year, err := randInt(12)
	if err != nil {
		return domain.CardCredentials{}, err
	}

	return domain.CardCredentials{
		Number: number.String(),
		CVV2:   fmt.Sprintf("%d", 1000+cvv),
		Expiry: fmt.Sprintf("%02d-%02d", 21+year, 1+month),
	}, nil
}

func randInt(n int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, fmt.Errorf("read random: %w", err)
	}
	return v.Int64(), nil
}
