package puaa

import (
	"fmt"
	"sort"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
)

// ConflictingRangeError reports two sources disagreeing on a partial range
// overlap. Ranges contributed for the same entity kind must be pairwise
// disjoint or boundary-identical; the merger never guesses a split.
type ConflictingRangeError struct {
	Kind       string // "block", "character", or a generic file name
	Prev, Next Range
	PrevOrigin Origin
	NextOrigin Origin
}

func (e ConflictingRangeError) Error() string {
	return fmt.Sprintf("conflicting %s ranges: %s (%s) overlaps %s (%s)",
		e.Kind, e.Next, e.NextOrigin, e.Prev, e.PrevOrigin)
}

// rangeMap accumulates range-keyed records during a merge. It is backed by
// a treemap keyed by the range start, so neighbour lookup and ordered
// extraction come for free.
type rangeMap struct {
	kind string
	m    *treemap.Map
}

type rangeItem struct {
	r Range
	o Origin
	v interface{}
}

func newRangeMap(kind string) *rangeMap {
	return &rangeMap{kind: kind, m: treemap.NewWith(utils.Int32Comparator)}
}

// put inserts a record for range r. An exactly matching range replaces the
// previous record (last writer wins); a partial overlap is an error.
func (rm *rangeMap) put(r Range, o Origin, v interface{}) error {
	if _, fv := rm.m.Floor(r.Lo); fv != nil {
		prev := fv.(rangeItem)
		if prev.r == r {
			rm.m.Put(r.Lo, rangeItem{r: r, o: o, v: v})
			return nil
		}
		if prev.r.overlaps(r) {
			return ConflictingRangeError{
				Kind: rm.kind,
				Prev: prev.r, PrevOrigin: prev.o,
				Next: r, NextOrigin: o,
			}
		}
	}
	if _, cv := rm.m.Ceiling(r.Lo + 1); cv != nil {
		next := cv.(rangeItem)
		if next.r.overlaps(r) {
			return ConflictingRangeError{
				Kind: rm.kind,
				Prev: next.r, PrevOrigin: next.o,
				Next: r, NextOrigin: o,
			}
		}
	}
	rm.m.Put(r.Lo, rangeItem{r: r, o: o, v: v})
	return nil
}

// each walks the accumulated records in ascending range order.
func (rm *rangeMap) each(f func(v interface{})) {
	it := rm.m.Iterator()
	for it.Next() {
		f(it.Value().(rangeItem).v)
	}
}

func (rm *rangeMap) size() int {
	return rm.m.Size()
}

func firstField(e GenericEntry) string {
	if len(e.Fields) > 0 {
		return e.Fields[0]
	}
	return ""
}

// Merge combines the records of one or more ordered sources into a single
// canonically ordered Table for the requested profile.
//
// Later sources override earlier ones on exact range collision. Partial
// overlap between ranges is a ConflictingRangeError. Aliases are additive:
// exact duplicates are dropped, distinct aliases for the same codepoint
// accumulate in source order. Record kinds outside the profile are
// discarded (Min keeps blocks and character records, Names adds aliases,
// Full keeps everything).
func Merge(profile Profile, sources ...*SourceSet) (*Table, error) {
	blocks := newRangeMap("block")
	chars := newRangeMap("character")
	// Generic files may carry several properties whose ranges legitimately
	// overlap each other (PropList.txt, ScriptExtensions.txt). Override and
	// conflict detection therefore runs per (file, first field), never
	// across properties.
	extras := make(map[string]map[string]*rangeMap)
	aliases := arraylist.New()
	seen := make(map[string]bool)

	for _, src := range sources {
		if src == nil {
			continue
		}
		for _, b := range src.Blocks {
			if err := blocks.put(b.Range, b.Origin, b); err != nil {
				return nil, err
			}
		}
		for _, c := range src.Chars {
			if err := chars.put(c.Range, c.Origin, c); err != nil {
				return nil, err
			}
		}
		if profile == Names || profile == Full {
			for _, a := range src.Aliases {
				key := fmt.Sprintf("%04X;%s;%d", a.Codepoint, a.Alias, a.Type)
				if seen[key] {
					continue
				}
				seen[key] = true
				aliases.Add(a)
			}
		}
		if profile == Full {
			for _, sec := range src.Extras {
				props := extras[sec.File]
				if props == nil {
					props = make(map[string]*rangeMap)
					extras[sec.File] = props
				}
				for _, e := range sec.Entries {
					var prop string
					if len(e.Fields) > 0 {
						prop = e.Fields[0]
					}
					rm := props[prop]
					if rm == nil {
						rm = newRangeMap(sec.File)
						props[prop] = rm
					}
					if err := rm.put(e.Range, e.Origin, e); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	table := &Table{Profile: profile}
	table.Blocks = make([]Block, 0, blocks.size())
	blocks.each(func(v interface{}) {
		table.Blocks = append(table.Blocks, v.(Block))
	})
	table.Chars = make([]CharRecord, 0, chars.size())
	chars.each(func(v interface{}) {
		table.Chars = append(table.Chars, v.(CharRecord))
	})

	table.Aliases = make([]NameAlias, 0, aliases.Size())
	aliases.Each(func(_ int, v interface{}) {
		table.Aliases = append(table.Aliases, v.(NameAlias))
	})
	sort.SliceStable(table.Aliases, func(i, j int) bool {
		return table.Aliases[i].Codepoint < table.Aliases[j].Codepoint
	})

	files := make([]string, 0, len(extras))
	for file := range extras {
		files = append(files, file)
	}
	sort.Strings(files)
	for _, file := range files {
		sec := GenericSection{File: file}
		for _, rm := range extras[file] {
			rm.each(func(v interface{}) {
				sec.Entries = append(sec.Entries, v.(GenericEntry))
			})
		}
		sort.SliceStable(sec.Entries, func(i, j int) bool {
			a, b := sec.Entries[i], sec.Entries[j]
			if a.Lo != b.Lo {
				return a.Lo < b.Lo
			}
			if a.Hi != b.Hi {
				return a.Hi < b.Hi
			}
			return firstField(a) < firstField(b)
		})
		table.Extras = append(table.Extras, sec)
	}

	tracer().Infof("merged %d sources: %d blocks, %d characters, %d aliases, %d extra sections",
		len(sources), len(table.Blocks), len(table.Chars), len(table.Aliases), len(table.Extras))
	return table, nil
}
