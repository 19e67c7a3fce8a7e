package compliance

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/sec-atlas/pkg/models/domain"
)

// recognizedCommands are the policy tally buckets. Policies with any other
// command kind (e.g. ALL) are listed but not tallied.
var recognizedCommands = []string{"SELECT", "INSERT", "UPDATE", "DELETE"}

// checkRLS inspects every table in the default schema: row-security flag,
// policy rows, and per-command policy counts. The connection lives for this
// one call.
func (s *service) checkRLS(ctx context.Context, creds domain.Credentials) domain.RLSResult {
	logger := zerolog.Ctx(ctx)

	if creds.DBURL == "" {
		return domain.RLSResult{
			Status: domain.StatusError,
			Error:  "dbUrl is required for the row level security check",
		}
	}

	store, err := s.openStore(ctx, creds.DBURL)
	if err != nil {
		logger.Error().Err(err).Msg("rls check: data store connection failed")
		return domain.RLSResult{
			Status: domain.StatusError,
			Error:  err.Error(),
		}
	}
	defer store.Close()

	tables, err := store.ListTables(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("rls check: table enumeration failed")
		return domain.RLSResult{
			Status: domain.StatusError,
			Error:  err.Error(),
		}
	}

	if len(tables) == 0 {
		return domain.RLSResult{
			Status:  domain.StatusNotApplicable,
			Message: "No tables found in the public schema.",
			Tables:  []domain.TableRLS{},
		}
	}

	result := domain.RLSResult{
		Status: domain.StatusPassing,
		Tables: make([]domain.TableRLS, 0, len(tables)),
	}
	for _, t := range tables {
		rows, err := store.ListPolicies(ctx, t.Name)
		if err != nil {
			return domain.RLSResult{
				Status: domain.StatusError,
				Error:  err.Error(),
			}
		}

		counts := make(map[string]int, len(recognizedCommands))
		for _, cmd := range recognizedCommands {
			counts[cmd] = 0
		}
		policies := make([]domain.Policy, 0, len(rows))
		for _, row := range rows {
			if _, ok := counts[row.Command]; ok {
				counts[row.Command]++
			}
			policies = append(policies, domain.Policy{
				Name:      row.Name,
				Command:   row.Command,
				Roles:     row.Roles,
				Using:     row.Using,
				WithCheck: row.WithCheck,
			})
		}

		table := domain.TableRLS{
			Schema:       t.Schema,
			Table:        t.Name,
			Enabled:      t.RLSEnabled,
			PolicyCounts: counts,
			Policies:     policies,
		}
		if !t.RLSEnabled {
			result.Status = domain.StatusFailing
			table.Hint = fmt.Sprintf("ALTER TABLE public.%s ENABLE ROW LEVEL SECURITY;", t.Name)
		}
		result.Tables = append(result.Tables, table)
	}

	if result.Status == domain.StatusFailing {
		result.Message = "Some tables do not have row level security enabled."
	} else {
		result.Message = "Row level security is enabled on every table."
	}
	return result
}
