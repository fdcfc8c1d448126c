package override

import (
	"fmt"
	"strings"
)

const (
	appendixRuleLengthConstant         = 50
	appendixRuleCharacterConstant      = "="
	noticeHeadingConstant              = "⚠️  VALIDATION OVERRIDE NOTICE"
	justificationHeadingConstant       = "JUSTIFICATION:"
	justificationIndentConstant        = "  "
	errorsHeadingTemplateConstant      = "VALIDATION ERRORS (%d):"
	warningsHeadingTemplateConstant    = "VALIDATION WARNINGS (%d):"
	appendixBulletPrefixConstant       = "  • "
	pushedDespiteFailuresLineConstant  = "This commit was pushed despite validation failures."
	reviewInFollowUpCommitLineConstant = "Review and address these issues in a follow-up commit."
	appendixLineSeparatorConstant      = "\n"
	appendixBlankLineConstant          = ""
)

// OverrideRecord carries the evidence for one validation override.
type OverrideRecord struct {
	Justification string
	Errors        []string
	Warnings      []string
}

func appendixRule() string {
	return strings.Repeat(appendixRuleCharacterConstant, appendixRuleLengthConstant)
}

// BuildAppendix renders the override record as a commit-message appendix.
// The ERRORS and WARNINGS sections are omitted entirely when the
// corresponding list is empty.
func BuildAppendix(record OverrideRecord) string {
	ruleLine := appendixRule()

	appendixLines := []string{
		appendixLineSeparatorConstant + ruleLine,
		noticeHeadingConstant,
		ruleLine,
		appendixBlankLineConstant,
		justificationHeadingConstant,
		justificationIndentConstant + record.Justification,
		appendixBlankLineConstant,
	}

	if len(record.Errors) > 0 {
		appendixLines = append(appendixLines, fmt.Sprintf(errorsHeadingTemplateConstant, len(record.Errors)))
		for _, errorDetail := range record.Errors {
			appendixLines = append(appendixLines, appendixBulletPrefixConstant+errorDetail)
		}
		appendixLines = append(appendixLines, appendixBlankLineConstant)
	}

	if len(record.Warnings) > 0 {
		appendixLines = append(appendixLines, fmt.Sprintf(warningsHeadingTemplateConstant, len(record.Warnings)))
		for _, warningDetail := range record.Warnings {
			appendixLines = append(appendixLines, appendixBulletPrefixConstant+warningDetail)
		}
		appendixLines = append(appendixLines, appendixBlankLineConstant)
	}

	appendixLines = append(appendixLines,
		pushedDespiteFailuresLineConstant,
		reviewInFollowUpCommitLineConstant,
		ruleLine,
	)

	return strings.Join(appendixLines, appendixLineSeparatorConstant)
}
