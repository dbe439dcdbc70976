package api

// ResolveExecutionRule picks the execution rule to submit for a test. The
// strictest of the test's own rule and the override's rule wins, under the
// order skipped > non_blocking > blocking. A test without a rule is blocking.
func ResolveExecutionRule(test *Test, override *ConfigOverride) ExecutionRule {
	rule := RuleBlocking
	if test != nil && test.Options.CI != nil && test.Options.CI.ExecutionRule != "" {
		rule = test.Options.CI.ExecutionRule
	}
	if override != nil && override.ExecutionRule != "" && override.ExecutionRule.strictness() > rule.strictness() {
		rule = override.ExecutionRule
	}
	return rule
}
