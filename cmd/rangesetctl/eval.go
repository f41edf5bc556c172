package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/henderiw/rangeset/pkg/rangeset"
)

func runEval(w io.Writer, args []string) error {
	rs, err := evalOps(args)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "set:        %s\n", rs)
	if span, err := rs.Span(); err == nil {
		fmt.Fprintf(w, "span:       %s\n", span)
	} else if !errors.Is(err, rangeset.ErrNoSuchElement) {
		return err
	}
	fmt.Fprintf(w, "complement: %s\n", rs.Complement())
	return nil
}

func evalOps(ops []string) (rangeset.RangeSet[int64], error) {
	rs, err := rangeset.New[int64]()
	if err != nil {
		return nil, err
	}
	for _, op := range ops {
		op = strings.TrimSpace(op)
		if op == "~" {
			rs = rs.Complement().Clone()
			continue
		}
		if len(op) < 2 {
			return nil, fmt.Errorf("invalid operation %q", op)
		}
		r, err := rangeset.ParseInt(op[1:])
		if err != nil {
			return nil, fmt.Errorf("operation %q: %w", op, err)
		}
		switch op[0] {
		case '+':
			err = rs.Add(r)
		case '-':
			err = rs.Remove(r)
		default:
			err = fmt.Errorf("unknown operator %q", op[0])
		}
		if err != nil {
			return nil, fmt.Errorf("operation %q: %w", op, err)
		}
	}
	return rs, nil
}
