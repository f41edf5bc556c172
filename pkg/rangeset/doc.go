// Package rangeset implements sets of values made up of disjoint ranges over
// any totally ordered type.
//
// A RangeSet keeps its member ranges maximally coalesced: adding a range
// merges it with every member it is connected to, removing a range splits the
// members it cuts through. The set exposes a live complement view that shares
// the underlying ranges and inverts every query, and a read-through view of
// its member ranges.
//
//	rs, _ := rangeset.New(rangeset.Closed(1, 3))
//	_ = rs.Add(rangeset.GreaterThan(4))
//	fmt.Println(rs)              // [1‥3](4‥+∞)
//	fmt.Println(rs.Complement()) // (-∞‥1)(3‥4]
package rangeset
