// ABOUTME: Reporters that render reservations and alternate geometries
// ABOUTME: Text layout is stable so shell scripts can grep the warning line

package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hpcutil/pestr/internal/geometry"
	"github.com/hpcutil/pestr/internal/tui/styles"
)

// Document is the machine-readable report shape.
type Document struct {
	Geometry     geometry.Geometry    `json:"geometry"`
	Reservation  geometry.Reservation `json:"reservation"`
	Alternatives []geometry.Alternate `json:"alternatives"`
}

// Text writes the human-readable report: the reservation summary, a warning
// block when the reservation is not filled, and the alternates list.
func Text(w io.Writer, res geometry.Reservation, alternates []geometry.Alternate) {
	fmt.Fprintf(w, "%d %s (%d CPU cores)\n", res.Nodes, pluralize("node", res.Nodes), res.TotalCPUs)

	if !res.Filled() {
		fmt.Fprintln(w, styles.StatusWarning.Render("warning: reservation is not filled"))
		fmt.Fprintf(w, "  %d CPU cores in use\n", res.UsedCPUs)
		fmt.Fprintf(w, "  %d CPU cores idle across %d %s\n",
			res.IdleCPUs, res.PartialNodes, pluralize("node", res.PartialNodes))
	}

	if len(alternates) > 0 {
		fmt.Fprintln(w, "alternate geometries that fill the reservation:")
		for _, alt := range alternates {
			fmt.Fprintf(w, "  %d x %d (%d %s; %d CPU cores)\n",
				alt.Geometry.PEs, alt.Geometry.ThreadsPerPE,
				alt.Reservation.Nodes, pluralize("node", alt.Reservation.Nodes),
				alt.Reservation.TotalCPUs)
		}
	}
}

// JSON writes the report as a pretty-printed JSON document. Alternatives is
// always an array, never null.
func JSON(w io.Writer, g geometry.Geometry, res geometry.Reservation, alternates []geometry.Alternate) error {
	doc := Document{Geometry: g, Reservation: res, Alternatives: alternates}
	if doc.Alternatives == nil {
		doc.Alternatives = []geometry.Alternate{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func pluralize(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
