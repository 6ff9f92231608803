package slack

import (
	"fmt"
	"os"
	"strings"

	"github.com/paneq/awesome-openclaw-slack/pkg/scheduler"
)

// AccountResolver 基于配置解析账号凭证
// 查找顺序：slack.accounts.<id>.bot_token，默认账号再兜底 SLACK_BOT_TOKEN
type AccountResolver struct {
	defaultAccount string
	accounts       map[string]AccountConfig
	getenv         func(string) string
}

// NewAccountResolver 创建 AccountResolver
// 账号 ID 不区分大小写（viper 会把 map key 转为小写）
func NewAccountResolver(cfg Config) *AccountResolver {
	accounts := make(map[string]AccountConfig, len(cfg.Accounts))
	for id, acct := range cfg.Accounts {
		accounts[strings.ToLower(strings.TrimSpace(id))] = acct
	}

	defaultAccount := strings.ToLower(strings.TrimSpace(cfg.DefaultAccount))
	if defaultAccount == "" {
		defaultAccount = DefaultAccountID
	}

	return &AccountResolver{
		defaultAccount: defaultAccount,
		accounts:       accounts,
		getenv:         os.Getenv,
	}
}

// ResolveAccount 实现 scheduler.CredentialResolver
func (r *AccountResolver) ResolveAccount(accountID string) (scheduler.Account, error) {
	id := strings.ToLower(strings.TrimSpace(accountID))
	if id == "" {
		id = r.defaultAccount
	}

	if acct, ok := r.accounts[id]; ok {
		if token := ResolveToken(acct.BotToken); token != "" {
			return scheduler.Account{AccountID: id, BotToken: token}, nil
		}
	}

	if id == r.defaultAccount {
		if token := strings.TrimSpace(r.getenv(EnvBotToken)); token != "" {
			return scheduler.Account{AccountID: id, BotToken: token}, nil
		}
	}

	return scheduler.Account{}, fmt.Errorf("%w for account %q (set slack.accounts.%s.bot_token or %s)",
		scheduler.ErrCredentialMissing, id, id, EnvBotToken)
}

// AccountIDs 返回已配置的账号 ID
func (r *AccountResolver) AccountIDs() []string {
	ids := make([]string, 0, len(r.accounts))
	for id := range r.accounts {
		ids = append(ids, id)
	}
	return ids
}
