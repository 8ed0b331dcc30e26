package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/policy"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/util"
	"go.uber.org/zap"
)

// CheckCommitReadiness returns approvals of channel organizations, readiness is evaluated
// against the channel lifecycle endorsement policy.
func (f *Fabric) CheckCommitReadiness(ctx context.Context, channel string, def chaincode.Definition, collections chaincode.CollectionConfig) (chaincode.CommitReadiness, error) {
	p, err := definitionParams(def, collections)
	if err != nil {
		return chaincode.CommitReadiness{}, err
	}

	lcCli, err := f.lifecycleClient(ctx)
	if err != nil {
		return chaincode.CommitReadiness{}, err
	}

	res, err := lcCli.CheckCommitReadiness(ctx, channel, readinessArgs(def, p))
	if err != nil {
		return chaincode.CommitReadiness{}, fmt.Errorf("check commit readiness: %w", classify(err))
	}

	approvals := make(map[string]bool, len(res.Approvals))
	for org, ok := range res.Approvals {
		approvals[org] = ok
	}
	ready, err := f.ready(ctx, channel, approvals)
	if err != nil {
		return chaincode.CommitReadiness{}, err
	}
	return chaincode.CommitReadiness{Approvals: approvals, Ready: ready}, nil
}

// ready evaluates LifecycleEndorsement policy of the channel. A channel without the policy
// falls back to MAJORITY of application organizations, as Fabric does by default.
func (f *Fabric) ready(ctx context.Context, channel string, approvals map[string]bool) (bool, error) {
	conf, err := f.channelConfig(ctx, channel)
	if err != nil {
		return false, fmt.Errorf("%w: read lifecycle endorsement policy of %s: %v", chaincode.ErrUnavailable, channel, err)
	}

	orgs, err := util.GetApplicationOrgs(conf)
	if err != nil {
		orgs = make([]string, 0, len(approvals))
		for org := range approvals {
			orgs = append(orgs, org)
		}
		sort.Strings(orgs)
	}

	pol, err := util.GetApplicationPolicy(conf, policy.LifecycleEndorsement)
	if err != nil {
		f.l.Debug("lifecycle endorsement policy not found, readiness by majority", zap.String("channel", channel), zap.Error(err))
		return policy.Majority(orgs, approvals), nil
	}

	ok, err := policy.Evaluate(pol, orgs, approvals)
	if err != nil {
		return false, fmt.Errorf("evaluate lifecycle endorsement policy: %w", err)
	}
	return ok, nil
}

// QueryApprovedOrganizations returns sorted organizations which approved the definition.
func (f *Fabric) QueryApprovedOrganizations(ctx context.Context, channel string, def chaincode.Definition, collections chaincode.CollectionConfig) ([]string, error) {
	p, err := definitionParams(def, collections)
	if err != nil {
		return nil, err
	}

	lcCli, err := f.lifecycleClient(ctx)
	if err != nil {
		return nil, err
	}

	res, err := lcCli.CheckCommitReadiness(ctx, channel, readinessArgs(def, p))
	if err != nil {
		return nil, fmt.Errorf("check commit readiness: %w", classify(err))
	}

	orgs := make([]string, 0, len(res.Approvals))
	for org, ok := range res.Approvals {
		if ok {
			orgs = append(orgs, org)
		}
	}
	sort.Strings(orgs)
	return orgs, nil
}
