package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/gitwalk/schema"
	"github.com/pmezard/go-difflib/difflib"
)

// diffContextLines is the number of unchanged lines around each hunk.
const diffContextLines = 3

// ContentDiff returns a unified diff of path between two revisions. A side
// where the path does not exist is treated as empty, so additions and
// deletions render as whole-file hunks. Identical content yields "".
func ContentDiff(ctx context.Context, repo *Repository, path, fromRev, toRev string) (string, error) {
	from, inFrom, err := contentOrEmpty(ctx, repo, path, fromRev)
	if err != nil {
		return "", err
	}
	to, inTo, err := contentOrEmpty(ctx, repo, path, toRev)
	if err != nil {
		return "", err
	}
	if !inFrom && !inTo {
		return "", fmt.Errorf("%w: %s exists at neither %s nor %s", schema.ErrNotFound, path, fromRev, toRev)
	}

	ud := difflib.UnifiedDiff{
		A:        splitLines(from),
		B:        splitLines(to),
		FromFile: fmt.Sprintf("a/%s", path),
		ToFile:   fmt.Sprintf("b/%s", path),
		FromDate: fromRev,
		ToDate:   toRev,
		Context:  diffContextLines,
	}
	return difflib.GetUnifiedDiffString(ud)
}

// contentOrEmpty reports found=false, not an error, when path is absent at rev.
func contentOrEmpty(ctx context.Context, repo *Repository, path, rev string) ([]byte, bool, error) {
	data, err := repo.ShowFileAtRevision(ctx, path, rev)
	if errors.Is(err, schema.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// splitLines keeps empty content empty; difflib.SplitLines would yield one blank line.
func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	return difflib.SplitLines(string(data))
}
