// Package output governs the size of MCP tool responses.
//
// Query results from the search proxy and the data service can be far larger
// than an agent's context window. Every result passes through a [Governor]
// before it is returned to the host: the result is serialized once, its token
// count is estimated, and the serialized text is either returned inline or
// written to a spill file whose location is returned instead.
//
// # Token Estimation
//
// Token counts are estimated by a pluggable [TokenCounter]. The default,
// [CharDivCounter], charges one token per four bytes of UTF-8 output, rounded
// up. Any counter used here must be monotonic: adding content never lowers
// the estimate.
//
// # Spill Files
//
// Oversized results are written to a fresh file in the configured spill
// directory (see [Config]). Files are created with a unique name and are never
// removed by this package; cleanup is left to the operator or the OS temp
// directory policy.
//
// # Usage Example
//
//	gov := output.NewGovernor(output.ScopeSearch, cfg.SearchMaxTokens,
//		output.WithSpillDir(cfg.SpillDir))
//	resp, err := gov.Govern(ctx, result)
//	if err != nil {
//		return err
//	}
//	text := resp.String()
package output
