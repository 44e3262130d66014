package core

// GroupRows folds a flat, ordered row sequence into groups keyed by keyField.
//
// A row whose key is blank or missing belongs to the most recent keyed row.
// Rows that appear before any keyed row have nothing to inherit and are
// dropped (counted in Groups.Dropped). A key seen again later, after other
// keys, appends to its original group, so group order is the order of first
// appearance and row order within a group is input order.
func GroupRows(rows []Record, keyField string) Groups {
	var (
		out     Groups
		index   = make(map[string]int)
		lastKey string
	)

	for _, row := range rows {
		key := CleanCell(row.Value(keyField))
		if key == "" {
			key = lastKey
		}
		if key == "" {
			out.Dropped++
			continue
		}
		lastKey = key

		i, ok := index[key]
		if !ok {
			i = len(out.Items)
			index[key] = i
			out.Items = append(out.Items, Group{Key: key})
		}
		out.Items[i].Rows = append(out.Items[i].Rows, row)
	}

	return out
}

// Flatten returns every grouped row in group order.
func (g Groups) Flatten() []Record {
	var out []Record
	for _, grp := range g.Items {
		out = append(out, grp.Rows...)
	}
	return out
}
