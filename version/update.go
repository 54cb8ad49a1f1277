package version

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/mod/semver"
)

const (
	// latestReleaseURL points at the newest published release of the CLI.
	latestReleaseURL = "https://api.github.com/repos/SupersonicAds/spotcli/releases/latest"

	// updateCheckTimeout keeps the update check from delaying startup.
	updateCheckTimeout = time.Second

	// disableUpdateCheckEnv disables the update check when set.
	disableUpdateCheckEnv = "SPOTCLI_DISABLE_UPDATE_CHECK"
)

type release struct {
	TagName string `json:"tag_name"`
}

// CheckForUpdate asks GitHub for the latest release and reports whether it
// is newer than the running build. Failures and timeouts report no update;
// the check is advisory only.
func CheckForUpdate() (string, bool) {
	return checkForUpdate(latestReleaseURL)
}

func checkForUpdate(url string) (string, bool) {
	if os.Getenv(disableUpdateCheckEnv) != "" {
		return "", false
	}

	client := cleanhttp.DefaultClient()
	client.Timeout = updateCheckTimeout

	resp, err := client.Get(url)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	latest := release{}
	if err := json.NewDecoder(resp.Body).Decode(&latest); err != nil {
		return "", false
	}

	current := "v" + Version
	if VersionPrerelease != "" {
		current += "-" + VersionPrerelease
	}
	if !semver.IsValid(latest.TagName) || !semver.IsValid(current) {
		return "", false
	}

	if semver.Compare(latest.TagName, current) > 0 {
		return latest.TagName, true
	}
	return "", false
}
