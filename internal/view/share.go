package view

import (
	"fmt"
	"math/big"

	"github.com/cryptophy/lottod/internal/format"
)

// ShareMessage composes the post-purchase share text. The pot is rendered
// with the six-decimal ETH contract; a nil pot renders as zero rather than
// dropping the message.
func ShareMessage(count int64, potWei *big.Int) string {
	noun := "tickets"
	if count == 1 {
		noun = "ticket"
	}
	return fmt.Sprintf("I just bought %d %s for a chance to win %s ETH in today's draw!",
		count, noun, format.ETH(potWei))
}
