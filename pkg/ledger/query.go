package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/util"
	"github.com/atomyze-foundation/hlf-lifecycle/system/lifecycle"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// QueryCurrentSequence returns committed sequence of chaincode name, zero when it was never committed.
// Sequence is tracked by Fabric per name, version only narrows the log context.
func (f *Fabric) QueryCurrentSequence(ctx context.Context, channel, name, version string) (int64, error) {
	lcCli, err := f.lifecycleClient(ctx)
	if err != nil {
		return 0, err
	}

	res, err := lcCli.QueryCommittedWithName(ctx, channel, name)
	if err != nil {
		if notDefined(err) {
			f.l.Debug("chaincode is not committed", zap.String("channel", channel), zap.String("chaincode", name), zap.String("version", version))
			return 0, nil
		}
		return 0, fmt.Errorf("query committed %s: %w", name, classify(err))
	}
	return res.Sequence, nil
}

// QueryCurrentPackageID returns package identity of chaincode version. Resolution order:
// the package last installed through this client for the version label when the peer still has it,
// the package approved by the organization when versions match, the only installed package
// labelled for the version (or, failing that, labelled with the bare name). Several installed
// candidates without a preferred one are reported as ErrAmbiguousPackage.
func (f *Fabric) QueryCurrentPackageID(ctx context.Context, channel, name, version string) (string, error) {
	lcCli, err := f.lifecycleClient(ctx)
	if err != nil {
		return "", err
	}
	label := chaincode.Definition{Name: name, Version: version}.Label()

	var installed []lifecycle.InstalledChaincode
	if last, ok := f.lastInstalled(label); ok {
		if installed, err = lcCli.QueryInstalled(ctx); err != nil {
			return "", fmt.Errorf("query installed: %w", classify(err))
		}
		for _, cc := range installed {
			if cc.PackageID == last {
				return last, nil
			}
		}
	}

	approved, err := lcCli.QueryApproved(ctx, channel, name, 0)
	switch {
	case err == nil:
		if approved.Version == version {
			if id := approved.GetSource().GetLocalPackage().GetPackageId(); id != "" {
				return id, nil
			}
		}
	case notDefined(err) || isResponseError(err):
		f.l.Debug("no approved definition", zap.String("chaincode", name), zap.Error(err))
	default:
		return "", fmt.Errorf("query approved %s: %w", name, classify(err))
	}

	if installed == nil {
		if installed, err = lcCli.QueryInstalled(ctx); err != nil {
			return "", fmt.Errorf("query installed: %w", classify(err))
		}
	}

	var byLabel, byName []string
	for _, cc := range installed {
		switch cc.Label {
		case label:
			byLabel = append(byLabel, cc.PackageID)
		case name:
			byName = append(byName, cc.PackageID)
		}
	}
	candidates := byLabel
	if len(candidates) == 0 {
		candidates = byName
	}
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("%w: no package of %s installed", chaincode.ErrDefinitionMissing, label)
	case 1:
		return candidates[0], nil
	}
	slices.Sort(candidates)
	return "", fmt.Errorf("%w: %s", chaincode.ErrAmbiguousPackage, strings.Join(candidates, ", "))
}

func notDefined(err error) bool {
	var respErr *util.ResponseError
	return errors.As(err, &respErr) && strings.Contains(respErr.Message, "is not defined")
}

func isResponseError(err error) bool {
	var respErr *util.ResponseError
	return errors.As(err, &respErr)
}
