package pacaur

import (
	"context"
	"regexp"
)

// Origin is the package source a requested identifier resolves to. An
// identifier is classified once per run and never reclassified.
type Origin int

const (
	OriginOfficial Origin = iota
	OriginUnofficial
	OriginLocalFile
)

// localArchivePattern matches a local package-archive filename.
var localArchivePattern = regexp.MustCompile(`^.+\.pkg\.tar(\.(gz|bz2|xz|zst|lrz|lzo|Z))?$`)

func isLocalArchive(name string) bool {
	return localArchivePattern.MatchString(name)
}

// buckets partitions the requested identifiers by origin, preserving the
// caller's order within each bucket.
type buckets struct {
	official []string
	aur      []string
	local    []string
}

func (b *buckets) total() int {
	return len(b.official) + len(b.aur) + len(b.local)
}

// classifyAll assigns an origin to every requested identifier.
//
// Order of checks, first match wins: local archive filename, AUR metadata
// (suppressed by Force), official repository. Official group names are
// transparently replaced by their member list. An identifier matching none
// of the origins aborts the whole run. Removal requests skip classification
// entirely: every non-empty identifier is a plain removal target.
func (rec *Reconciler) classifyAll(ctx context.Context, req *Request) (*buckets, error) {
	b := &buckets{}

	if req.State == StateAbsent {
		for _, name := range req.Names {
			if name != "" {
				b.official = append(b.official, name)
			}
		}
		return b, nil
	}

	for _, name := range req.Names {
		if name == "" {
			continue
		}

		if isLocalArchive(name) {
			b.local = append(b.local, name)
			continue
		}

		if !req.Force {
			info, err := rec.AUR.Info(ctx, name)
			if err != nil {
				return nil, err
			}
			if info != nil {
				b.aur = append(b.aur, name)
				continue
			}
		}

		if rec.isOfficial(ctx, name) {
			if members := rec.expandGroup(ctx, name); len(members) > 0 {
				b.official = append(b.official, members...)
			} else {
				b.official = append(b.official, name)
			}
			continue
		}

		return nil, &ValidationError{Msg: "unavailable package has been detected: " + name}
	}

	if len(b.aur) > 0 && len(b.local) > 0 {
		return nil, &ValidationError{Msg: "could not install aur packages mixed with local packages"}
	}

	return b, nil
}
