package ticketing

import (
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/satla/pkg/chat"
)

// transcriptLimit is the number of most recent channel messages in a transcript.
const transcriptLimit = 100

// buildTranscript renders the most recent messages of a channel, oldest first.
func buildTranscript(s chat.Session, ticketID, channelID string) (string, error) {
	msgs, err := s.ChannelMessages(channelID, transcriptLimit, "", "", "")
	if err != nil {
		return "", fmt.Errorf("error fetching channel messages: %w", err)
	}

	sb := new(strings.Builder)
	fmt.Fprintf(sb, "=== TRANSCRIPT %s ===\n\n", ticketID)

	// Messages are returned newest first.
	for idx := len(msgs) - 1; idx >= 0; idx-- {
		m := msgs[idx]
		author := "unknown"
		if m.Author != nil {
			author = m.Author.Username
		}
		fmt.Fprintf(sb, "[%s] %s: %s\n", m.Timestamp.UTC().Format("2006-01-02 15:04:05"), author, m.Content)
		for _, a := range m.Attachments {
			fmt.Fprintf(sb, "  attachment: %s\n", a.URL)
		}
	}
	return sb.String(), nil
}
