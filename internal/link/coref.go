package link

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sdrasco/freedact/internal/entity"
	"github.com/sdrasco/freedact/internal/seed"
)

// A bare surname or given name links to a full-name mention only while
// that mention is recent; pronouns referring to it keep it recent.
const corefSentenceWindow = 2

var pronounRe = regexp.MustCompile(`(?i)\b(?:he|him|his|she|her|hers|they|them|their|theirs)\b`)

type corefEvent struct {
	offset int
	span   int // index into spans, -1 for pronouns
}

type corefAnchor struct {
	cluster  *Cluster
	sentence int
}

// linkCoref clusters bare-name PERSON mentions with the full-name
// mention they follow. The heuristic is intentionally light: the last
// token of a full name acts as its surname, the first as its given
// name, and a bare mention matching either links to the most recent
// such full name within the sentence window. Distinct people sharing a
// surname in close quarters will over-merge; callers accept that in
// exchange for never leaking a repeated bare name.
func (l *Linker) linkCoref(text string, spans []entity.Span, clusters map[string]*Cluster, order *[]string) []entity.Span {
	out := spans
	starts := sentenceStarts(text)
	sentenceOf := func(off int) int {
		return sort.SearchInts(starts, off+1) - 1
	}

	idToCluster := make(map[string]*Cluster, len(clusters))
	for _, cl := range clusters {
		idToCluster[cl.ID] = cl
	}

	var events []corefEvent
	for i, s := range out {
		if s.Label == entity.LabelPerson {
			events = append(events, corefEvent{offset: s.Start, span: i})
		}
	}
	for _, m := range pronounRe.FindAllStringIndex(text, -1) {
		events = append(events, corefEvent{offset: m[0], span: -1})
	}
	sort.Slice(events, func(a, b int) bool { return events[a].offset < events[b].offset })

	bySurname := make(map[string]*corefAnchor)
	byGiven := make(map[string]*corefAnchor)
	var last *corefAnchor

	for _, ev := range events {
		sent := sentenceOf(ev.offset)

		if ev.span < 0 {
			if last != nil && sent-last.sentence <= corefSentenceWindow {
				last.sentence = sent
			}
			continue
		}

		s := out[ev.span]
		tokens := strings.Fields(s.Text)
		if len(tokens) >= 2 {
			cl := l.anchorCluster(out, ev.span, clusters, idToCluster, order)
			out[ev.span] = out[ev.span].WithEntityID(cl.ID)
			anchor := &corefAnchor{cluster: cl, sentence: sent}
			bySurname[strings.ToLower(tokens[len(tokens)-1])] = anchor
			byGiven[strings.ToLower(tokens[0])] = anchor
			last = anchor
			continue
		}

		if s.EntityID != "" {
			continue
		}
		tok := strings.ToLower(tokens[0])
		anchor, ok := bySurname[tok]
		if !ok {
			anchor, ok = byGiven[tok]
		}
		if !ok || sent-anchor.sentence > corefSentenceWindow {
			continue
		}
		out[ev.span] = out[ev.span].WithEntityID(anchor.cluster.ID)
		anchor.sentence = sent
		l.log.Debugf("coref", "bare mention %q -> cluster %s", s.Text, anchor.cluster.ID)
	}
	return out
}

// anchorCluster finds the cluster a full-name mention belongs to: its
// own entity ID if the alias pass set one, a cluster whose span it
// overlaps, a cluster with the same canonical name, or a fresh one.
func (l *Linker) anchorCluster(spans []entity.Span, idx int, clusters map[string]*Cluster, idToCluster map[string]*Cluster, order *[]string) *Cluster {
	s := spans[idx]
	if s.EntityID != "" {
		if cl, ok := idToCluster[s.EntityID]; ok {
			return cl
		}
	}
	for _, other := range spans {
		if other.EntityID == "" || !other.Overlaps(s) {
			continue
		}
		if cl, ok := idToCluster[other.EntityID]; ok {
			return cl
		}
	}
	canonical := seed.CanonicalizeKey(s.Text)
	if cl, ok := clusters[canonical]; ok {
		return cl
	}
	cl := &Cluster{
		ID:      l.deriver.StableID("ENTITY_CLUSTER", s.Text, l.scope, l.IDLength),
		Subject: s.Text,
		Label:   entity.LabelPerson,
	}
	clusters[canonical] = cl
	idToCluster[cl.ID] = cl
	*order = append(*order, canonical)
	return cl
}

// sentenceStarts returns the byte offset of each sentence, treating
// terminal punctuation and newlines as boundaries. Offset zero is
// always a sentence start.
func sentenceStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?', '\n':
			j := i + 1
			for j < len(text) && (text[j] == ' ' || text[j] == '\t' || text[j] == '\n' || text[j] == '\r') {
				j++
			}
			if j > i+1 || text[i] == '\n' {
				if j < len(text) {
					starts = append(starts, j)
				}
				i = j - 1
			}
		}
	}
	return starts
}
