package reportobs

import (
	"context"
	"time"

	"portfolio-advisor/internal/interfaces"
	"portfolio-advisor/internal/logger"
	"portfolio-advisor/internal/trace"
	"portfolio-advisor/internal/types"
)

type observableReporter struct {
	reporter interfaces.Reporter
}

var _ interfaces.Reporter = (*observableReporter)(nil)

func Wrap(reporter interfaces.Reporter) interfaces.Reporter {
	return &observableReporter{reporter: reporter}
}

func (o *observableReporter) Write(summary types.RunSummary) (string, error) {
	ctx, span := trace.StartSpan(context.Background(), "report.Write")
	defer span.End()

	start := time.Now()
	path, err := o.reporter.Write(summary)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Report generation failed", err,
			"session_id", summary.SessionID,
		)
		return "", err
	}
	if path == "" {
		logger.DebugSkip(ctx, 1, "Report output disabled", "session_id", summary.SessionID)
		return "", nil
	}
	logger.InfoSkip(ctx, 1, "Report generated successfully",
		"session_id", summary.SessionID,
		"rows", len(summary.Recommendations),
		"csv_path", path,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return path, nil
}
