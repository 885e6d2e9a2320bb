// Package records implements a header-keyed tabular record store on top of
// a remote table backend (a spreadsheet tab, a postgres or mongo emulation,
// or memory).
//
// Row 1 of every table holds the column headers. Data rows start at
// position 2 and are exposed as Row values keyed by header. Positions are
// 1-based and count the header row, matching how spreadsheets address rows.
//
// Store adds schema enforcement, a short-lived read cache and the
// find/append/update primitives the directory and ledger services build on:
//
//	st, err := records.Open(ctx, backend, "Users", []string{"Email", "Name", "Picture"},
//		records.WithProvisioning(records.ProvisionAuto),
//		records.WithCacheTTL(time.Minute),
//	)
//	row, pos, err := st.FindByKey(ctx, "Email", "ada@example.com")
//	if errors.Is(err, records.ErrRowNotFound) {
//		err = st.AppendRow(ctx, records.Row{"Email": "ada@example.com", "Name": "Ada"})
//	} else if err == nil {
//		row["Name"] = "Ada L."
//		err = st.UpdateRow(ctx, pos, row)
//	}
//
// A find followed by an update is not atomic. Two writers racing on the same
// row both succeed and the later write wins.
package records
