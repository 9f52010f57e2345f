package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/c360/semunits/unit"
)

// unitView is the JSON form of one unit in the /units listing.
type unitView struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	Kind     string `json:"kind,omitempty"`
	Parent   string `json:"parent,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Sequence uint64 `json:"sequence"`
	Depth    int    `json:"depth"`
	State    string `json:"state"`
}

func viewOf(u *unit.Unit, depth int) unitView {
	v := unitView{
		Name:     u.Name(),
		ID:       u.ID(),
		Kind:     u.Config().Kind,
		Sequence: u.Sequence(),
		Depth:    depth,
		State:    u.State().String(),
	}
	if p := u.Parent(); p != nil {
		v.Parent = p.Name()
	}
	if d := u.Domain(); d != nil {
		v.Domain = d.Name()
	}
	return v
}

func collectUnits(c *unit.Context) []unitView {
	views := []unitView{}
	c.Walk(func(u *unit.Unit, depth int) bool {
		views = append(views, viewOf(u, depth))
		return true
	})
	return views
}

func printTree(w io.Writer, c *unit.Context) error {
	for _, v := range collectUnits(c) {
		line := strings.Repeat("  ", v.Depth) + v.Name
		if v.Kind != "" {
			line += " [" + v.Kind + "]"
		}
		if v.Parent != "" {
			line += " parent=" + v.Parent
		}
		if _, err := fmt.Fprintf(w, "%s #%d\n", line, v.Sequence); err != nil {
			return err
		}
	}
	return nil
}

func unitsHandler(c *unit.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(collectUnits(c))
	})
}
