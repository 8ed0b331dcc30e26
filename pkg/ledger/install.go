package ledger

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"github.com/golang/protobuf/proto" //nolint:staticcheck
	pb "github.com/hyperledger/fabric-protos-go/peer"
	lb "github.com/hyperledger/fabric-protos-go/peer/lifecycle"
	"go.uber.org/zap"
)

// peer answers repeated install with error naming already installed package
var alreadyInstalledRe = regexp.MustCompile(`chaincode already successfully installed \(package ID '([^']+)'\)`)

// SendInstallProposal installs package on every peer, repeated install of the same package
// counts as success with the installed package identity.
func (f *Fabric) SendInstallProposal(ctx context.Context, peers []chaincode.PeerTarget, pkg []byte) ([]chaincode.PeerEndorsement, error) {
	prop, err := f.prop.Install(pkg)
	if err != nil {
		return nil, fmt.Errorf("create install proposal: %w", err)
	}

	endorsements, _ := f.endorse(ctx, peers, prop.Signed)
	for i := range endorsements {
		e := &endorsements[i]
		switch e.Status {
		case chaincode.StatusSuccess:
			id, err := installedPackageID(e.Endorsement)
			if err != nil {
				e.Status = chaincode.StatusEndorsementFailure
				e.Message = err.Error()
				continue
			}
			e.PackageID = id
		case chaincode.StatusEndorsementFailure:
			if m := alreadyInstalledRe.FindStringSubmatch(e.Message); m != nil {
				f.l.Debug("package already installed", zap.String("peer", e.Peer.String()), zap.String("packageId", m[1]))
				e.Status = chaincode.StatusSuccess
				e.PackageID = m[1]
			}
		}
	}
	f.rememberInstall(endorsements)
	return endorsements, nil
}

// rememberInstall records package identity when every successful peer reported the same one.
func (f *Fabric) rememberInstall(endorsements []chaincode.PeerEndorsement) {
	var id string
	for _, e := range endorsements {
		if e.Status != chaincode.StatusSuccess {
			continue
		}
		if id != "" && e.PackageID != id {
			return
		}
		id = e.PackageID
	}
	i := strings.LastIndex(id, ":")
	if i <= 0 {
		return
	}
	f.installsMx.Lock()
	f.installs[id[:i]] = id
	f.installsMx.Unlock()
}

func (f *Fabric) lastInstalled(label string) (string, bool) {
	f.installsMx.RLock()
	defer f.installsMx.RUnlock()
	id, ok := f.installs[label]
	return id, ok
}

func installedPackageID(raw []byte) (string, error) {
	var resp pb.ProposalResponse
	if err := proto.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("unmarshal proposal response: %w", err)
	}
	var res lb.InstallChaincodeResult
	if err := proto.Unmarshal(resp.GetResponse().GetPayload(), &res); err != nil {
		return "", fmt.Errorf("unmarshal install result: %w", err)
	}
	if res.PackageId == "" {
		return "", fmt.Errorf("install result has no package id")
	}
	return res.PackageId, nil
}
