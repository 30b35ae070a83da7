package observer

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewConversationID generates a conversation id unique within the process
// lifetime: a millisecond timestamp plus a random base36 suffix.
func NewConversationID() string {
	var b strings.Builder
	b.WriteString("conv_")
	b.WriteString(strconv.FormatInt(time.Now().UnixMilli(), 10))
	b.WriteByte('_')
	for i := 0; i < 9; i++ {
		b.WriteByte(base36[rand.Intn(len(base36))])
	}
	return b.String()
}
