package inspector

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/amurg-ai/streamkit/observer"
)

// writeSSEEvent writes one observer.Event as a "data: <json>\n\n" frame.
func writeSSEEvent(w io.Writer, e observer.Event) error {
	raw, err := json.Marshal(eventJSON(e))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", raw)
	return err
}
