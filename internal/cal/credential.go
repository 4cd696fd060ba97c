package cal

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// NewDefaultCredential wraps azidentity's chained credential, the handle
// CAL treats as an opaque, externally-owned capability per spec §6.
func NewDefaultCredential() (azcore.TokenCredential, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("acquire default azure credential: %w", err)
	}
	return cred, nil
}
