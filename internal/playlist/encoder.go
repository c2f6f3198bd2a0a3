package playlist

import (
	"fmt"
	"io"
	"strings"

	"github.com/alorle/iptv-player/internal/channel"
)

// Encode writes channels as an Extended M3U playlist. Output produced from a
// parsed channel list parses back to the same names, groups, logos and URLs.
func Encode(w io.Writer, channels []channel.Channel) error {
	if _, err := fmt.Fprintf(w, "%s\n", headerTag); err != nil {
		return err
	}

	for _, ch := range channels {
		if err := encodeChannel(w, ch); err != nil {
			return err
		}
	}

	return nil
}

func encodeChannel(w io.Writer, ch channel.Channel) error {
	if _, err := fmt.Fprintf(w, "%s-1 tvg-chno=\"%d\" tvg-name=\"%s\"",
		extinfPrefix, ch.Number(), attrValue(ch.Name())); err != nil {
		return err
	}

	if logo := ch.LogoURL(); logo != "" {
		if _, err := fmt.Fprintf(w, " tvg-logo=\"%s\"", attrValue(logo)); err != nil {
			return err
		}
	}

	if group := ch.GroupTitle(); group != "" {
		if _, err := fmt.Fprintf(w, " group-title=\"%s\"", attrValue(group)); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, ",%s\n%s\n", ch.Name(), ch.StreamURL()); err != nil {
		return err
	}

	return nil
}

// attrValue keeps a value inside its double-quoted attribute.
func attrValue(v string) string {
	return strings.ReplaceAll(v, `"`, "'")
}
