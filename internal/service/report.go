package service

import (
	"fmt"
	"strings"

	"github.com/yobatis-go/yobatis/internal/mapper"
)

// Report renders a Markdown summary of a generation run.
func Report(r *GenerateResult) string {
	var b strings.Builder
	sum := r.Summarize()

	b.WriteString("# Generated mappers\n\n")
	fmt.Fprintf(&b, "%d documents, %d records, %d statements.\n\n",
		sum.Documents, sum.Records, sumStatements(sum))

	if len(r.Outputs) == 0 {
		b.WriteString("No mapper documents matched.\n")
		return b.String()
	}

	b.WriteString("| Document | Namespace | Records |")
	for _, kind := range mapper.StatementKinds {
		fmt.Fprintf(&b, " %s |", kind)
	}
	b.WriteString("\n|---|---|---|")
	for range mapper.StatementKinds {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	for _, out := range r.Outputs {
		fmt.Fprintf(&b, "| %s | `%s` | %d |", out.Document, out.Namespace, len(out.Records))
		for _, kind := range mapper.StatementKinds {
			fmt.Fprintf(&b, " %d |", len(out.Functions[kind]))
		}
		b.WriteString("\n")
	}

	for _, out := range r.Outputs {
		fmt.Fprintf(&b, "\n## %s\n\n", out.Namespace)
		fmt.Fprintf(&b, "Files: `%s`, `%s`\n\n", out.HeaderName, out.SourceName)
		for _, kind := range mapper.StatementKinds {
			for _, id := range out.Functions[kind] {
				fmt.Fprintf(&b, "- %s `%s`\n", kind, id)
			}
		}
	}

	return b.String()
}

func sumStatements(s Summary) int {
	n := 0
	for _, c := range s.Statements {
		n += c
	}
	return n
}
