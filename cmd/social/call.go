package main

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"github.com/weisyn/socialmaker/client"
	"github.com/weisyn/socialmaker/internal/core/social/content"
	"github.com/weisyn/socialmaker/pkg/types"
	"golang.org/x/term"
)

// EnvPrivateKey 私钥十六进制环境变量
const EnvPrivateKey = "SOCIAL_PRIVATE_KEY"

var callFlags struct {
	node    string
	keyFile string
	timeout time.Duration
	proof   []string
	project string
}

// callCmd 通过 HTTP API 调用节点
var callCmd = &cobra.Command{
	Use:   "call",
	Short: "调用节点 API",
	Long: `通过 HTTP API 调用节点，写操作在本地用私钥签名。
私钥来自 --key 文件或环境变量 SOCIAL_PRIVATE_KEY，都未指定时在终端提示输入；私钥不会发送给节点。`,
}

func newClient(signed bool) (*client.Client, error) {
	opts := []client.Option{client.WithTimeout(callFlags.timeout)}
	if signed {
		key, err := loadKey()
		if err != nil {
			return nil, err
		}
		opts = append(opts, client.WithSigner(key))
	}
	return client.New(callFlags.node, opts...), nil
}

func loadKey() (*ecdsa.PrivateKey, error) {
	if callFlags.keyFile != "" {
		key, err := crypto.LoadECDSA(callFlags.keyFile)
		if err != nil {
			return nil, fmt.Errorf("读取私钥文件失败: %w", err)
		}
		return key, nil
	}
	if hex := os.Getenv(EnvPrivateKey); hex != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(hex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("解析 %s 失败: %w", EnvPrivateKey, err)
		}
		return key, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("需要签名: 请指定 --key 或设置 %s", EnvPrivateKey)
	}

	fmt.Fprint(os.Stderr, "输入私钥 (hex): ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("读取私钥失败: %w", err)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(string(raw)), "0x"))
	if err != nil {
		return nil, fmt.Errorf("解析私钥失败: %w", err)
	}
	return key, nil
}

func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), callFlags.timeout)
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("无效地址: %q", s)
	}
	return common.HexToAddress(s), nil
}

func parseAddresses(list []string) ([]common.Address, error) {
	out := make([]common.Address, 0, len(list))
	for _, s := range list {
		addr, err := parseAddress(s)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

func parseProof() (types.Proof, error) {
	proof := make(types.Proof, 0, len(callFlags.proof))
	for _, s := range callFlags.proof {
		h, err := parseHash32(s)
		if err != nil {
			return nil, err
		}
		proof = append(proof, h)
	}
	return proof, nil
}

func requireProject() (string, error) {
	if callFlags.project == "" {
		return "", fmt.Errorf("需要 --project")
	}
	return callFlags.project, nil
}

// runSigned 签名写操作的通用流程：准备客户端与证明，执行并打印回执
func runSigned(fn func(ctx context.Context, c *client.Client, slug string, proof types.Proof) (*client.Receipt, error)) error {
	slug, err := requireProject()
	if err != nil {
		return err
	}
	proof, err := parseProof()
	if err != nil {
		return err
	}
	c, err := newClient(true)
	if err != nil {
		return err
	}
	ctx, cancel := cmdContext()
	defer cancel()

	receipt, err := fn(ctx, c, slug, proof)
	if err != nil {
		return err
	}
	formatter.PrintSuccess(fmt.Sprintf("%s 已执行 (seq=%d)", receipt.Call, receipt.Seq))
	return formatter.Print(receipt.Logs)
}

// ===== 项目 =====

var projectFlags struct {
	name    string
	users   []string
	root    string
	service int
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "项目注册与成员管理",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <slug>",
	Short: "创建项目（部署三套合约）",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := parseAddresses(projectFlags.users)
		if err != nil {
			return err
		}
		root, err := parseHash32(projectFlags.root)
		if err != nil {
			return err
		}
		c, err := newClient(true)
		if err != nil {
			return err
		}
		ctx, cancel := cmdContext()
		defer cancel()

		receipt, err := c.CreateProject(ctx, projectFlags.name, args[0], users, root)
		if err != nil {
			return err
		}
		formatter.PrintSuccess("项目已创建: " + args[0])
		return formatter.Print(receipt.Logs)
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出全部项目",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _ := newClient(false)
		ctx, cancel := cmdContext()
		defer cancel()

		projects, err := c.ListProjects(ctx)
		if err != nil {
			return err
		}
		return formatter.Print(projects)
	},
}

var projectGetCmd = &cobra.Command{
	Use:   "get <slug>",
	Short: "查询项目",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _ := newClient(false)
		ctx, cancel := cmdContext()
		defer cancel()

		project, err := c.GetProject(ctx, args[0])
		if err != nil {
			return err
		}
		return formatter.Print(project)
	},
}

var projectAddUsersCmd = &cobra.Command{
	Use:   "add-users",
	Short: "追加成员并更新白名单根（仅所有者）",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := parseAddresses(projectFlags.users)
		if err != nil {
			return err
		}
		root, err := parseHash32(projectFlags.root)
		if err != nil {
			return err
		}
		return runSigned(func(ctx context.Context, c *client.Client, slug string, _ types.Proof) (*client.Receipt, error) {
			return c.AddMoreUser(ctx, slug, users, root)
		})
	},
}

var projectToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "翻转服务开关（仅所有者），不指定 --service 时翻转全部",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSigned(func(ctx context.Context, c *client.Client, slug string, _ types.Proof) (*client.Receipt, error) {
			if projectFlags.service < 0 {
				return c.ToggleServices(ctx, slug)
			}
			return c.ToggleService(ctx, slug, types.ServiceID(projectFlags.service))
		})
	},
}

var projectMemberCmd = &cobra.Command{
	Use:   "is-user <address>",
	Short: "校验成员资格",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug, err := requireProject()
		if err != nil {
			return err
		}
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		proof, err := parseProof()
		if err != nil {
			return err
		}
		c, _ := newClient(false)
		ctx, cancel := cmdContext()
		defer cancel()

		ok, err := c.IsUser(ctx, slug, addr, proof)
		if err != nil {
			return err
		}
		return formatter.Print(map[string]interface{}{"address": addr.Hex(), "member": ok})
	},
}

// ===== 资料 =====

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "用户资料",
}

var profileGetCmd = &cobra.Command{
	Use:   "get [address]",
	Short: "查询资料，省略地址时查询自己（需签名）",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug, err := requireProject()
		if err != nil {
			return err
		}
		ctx, cancel := cmdContext()
		defer cancel()

		if len(args) == 0 {
			c, err := newClient(true)
			if err != nil {
				return err
			}
			profile, err := c.GetMyProfile(ctx, slug)
			if err != nil {
				return err
			}
			return formatter.Print(profile)
		}

		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		c, _ := newClient(false)
		profile, err := c.GetProfile(ctx, slug, addr)
		if err != nil {
			return err
		}
		return formatter.Print(profile)
	},
}

var profilePseudoCmd = &cobra.Command{
	Use:   "pseudo <name>",
	Short: "修改昵称",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSigned(func(ctx context.Context, c *client.Client, slug string, proof types.Proof) (*client.Receipt, error) {
			return c.UpdatePseudo(ctx, slug, args[0], proof)
		})
	},
}

var profileStatusCmd = &cobra.Command{
	Use:   "status <true|false>",
	Short: "修改在线状态",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := strconv.ParseBool(args[0])
		if err != nil {
			return fmt.Errorf("无效状态: %q", args[0])
		}
		return runSigned(func(ctx context.Context, c *client.Client, slug string, proof types.Proof) (*client.Receipt, error) {
			return c.UpdateStatus(ctx, slug, status, proof)
		})
	},
}

// ===== 社交图 =====

var articleCmd = &cobra.Command{
	Use:   "article",
	Short: "文章与评论",
}

var articlePostCmd = &cobra.Command{
	Use:   "post <cid>",
	Short: "发布文章",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := content.Parse(args[0])
		if err != nil {
			return err
		}
		return runSigned(func(ctx context.Context, c *client.Client, slug string, proof types.Proof) (*client.Receipt, error) {
			return c.PostArticle(ctx, slug, cid, proof)
		})
	},
}

var articleCommentCmd = &cobra.Command{
	Use:   "comment <article-cid> <cid>",
	Short: "发布评论",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		article, err := content.Parse(args[0])
		if err != nil {
			return err
		}
		cid, err := content.Parse(args[1])
		if err != nil {
			return err
		}
		return runSigned(func(ctx context.Context, c *client.Client, slug string, proof types.Proof) (*client.Receipt, error) {
			return c.PostComment(ctx, slug, article, cid, proof)
		})
	},
}

var articleLastCmd = &cobra.Command{
	Use:   "last [address]",
	Short: "查询最新文章，省略地址时查询自己",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug, err := requireProject()
		if err != nil {
			return err
		}
		proof, err := parseProof()
		if err != nil {
			return err
		}
		c, err := newClient(true)
		if err != nil {
			return err
		}
		ctx, cancel := cmdContext()
		defer cancel()

		var ptr client.Pointer
		if len(args) == 0 {
			ptr, err = c.GetMyLastArticle(ctx, slug)
		} else {
			addr, perr := parseAddress(args[0])
			if perr != nil {
				return perr
			}
			ptr, err = c.GetLastArticleFrom(ctx, slug, addr, proof)
		}
		if err != nil {
			return err
		}
		return formatter.Print(ptr)
	},
}

// pointerCommand like/unlike/pin/unpin 共用的命令构造
func pointerCommand(use, short string, fn func(c *client.Client, ctx context.Context, slug string, cid common.Hash, proof types.Proof) (*client.Receipt, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <cid>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := content.Parse(args[0])
			if err != nil {
				return err
			}
			return runSigned(func(ctx context.Context, c *client.Client, slug string, proof types.Proof) (*client.Receipt, error) {
				return fn(c, ctx, slug, cid, proof)
			})
		},
	}
}

// addressCommand follow/unfollow 共用的命令构造
func addressCommand(use, short string, fn func(c *client.Client, ctx context.Context, slug string, addr common.Address, proof types.Proof) (*client.Receipt, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <address>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			return runSigned(func(ctx context.Context, c *client.Client, slug string, proof types.Proof) (*client.Receipt, error) {
				return fn(c, ctx, slug, addr, proof)
			})
		},
	}
}

var followingCmd = &cobra.Command{
	Use:   "following <address>",
	Short: "列出当前关注的地址",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug, err := requireProject()
		if err != nil {
			return err
		}
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		c, _ := newClient(false)
		ctx, cancel := cmdContext()
		defer cancel()

		list, err := c.Following(ctx, slug, addr)
		if err != nil {
			return err
		}
		return formatter.Print(list)
	},
}

// ===== 私信 =====

var messageCmd = &cobra.Command{
	Use:   "message",
	Short: "私信",
}

var messageSendCmd = &cobra.Command{
	Use:   "send <to> <cid>",
	Short: "发送私信指针",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		cid, err := content.Parse(args[1])
		if err != nil {
			return err
		}
		return runSigned(func(ctx context.Context, c *client.Client, slug string, proof types.Proof) (*client.Receipt, error) {
			return c.SendMessage(ctx, slug, cid, to, proof)
		})
	},
}

var messageCurrentCmd = &cobra.Command{
	Use:   "current <peer>",
	Short: "查询与对方会话的最新指针",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug, err := requireProject()
		if err != nil {
			return err
		}
		peer, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		proof, err := parseProof()
		if err != nil {
			return err
		}
		c, err := newClient(true)
		if err != nil {
			return err
		}
		ctx, cancel := cmdContext()
		defer cancel()

		ptr, err := c.GetCurrentCID(ctx, slug, peer, proof)
		if err != nil {
			return err
		}
		return formatter.Print(ptr)
	},
}

var messageBurnCmd = &cobra.Command{
	Use:   "burn <peer>",
	Short: "清空与对方的会话指针",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		peer, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		return runSigned(func(ctx context.Context, c *client.Client, slug string, proof types.Proof) (*client.Receipt, error) {
			return c.BurnChat(ctx, slug, peer, proof)
		})
	},
}

// ===== 日志 =====

var logsFlags struct {
	contracts []string
	names     []string
	topics    []string
	fromSeq   uint64
	limit     int
}

func parseFilter() (types.LogFilter, error) {
	contracts, err := parseAddresses(logsFlags.contracts)
	if err != nil {
		return types.LogFilter{}, err
	}
	filter := types.LogFilter{
		Contracts: contracts,
		Names:     logsFlags.names,
		FromSeq:   logsFlags.fromSeq,
		Limit:     logsFlags.limit,
	}
	for _, s := range logsFlags.topics {
		if common.IsHexAddress(s) {
			filter.Topics = append(filter.Topics, types.AddressTopic(common.HexToAddress(s)))
			continue
		}
		h, err := content.Parse(s)
		if err != nil {
			return types.LogFilter{}, fmt.Errorf("无效主题: %q", s)
		}
		filter.Topics = append(filter.Topics, h)
	}
	return filter, nil
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "查询事件日志",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := parseFilter()
		if err != nil {
			return err
		}
		c, _ := newClient(false)
		ctx, cancel := cmdContext()
		defer cancel()

		logs, err := c.Logs(ctx, filter)
		if err != nil {
			return err
		}
		return formatter.Print(logs)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "订阅事件日志（先回放 --from-seq 之后的历史）",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := parseFilter()
		if err != nil {
			return err
		}
		c, _ := newClient(false)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sub, err := c.SubscribeLogs(ctx, filter)
		if err != nil {
			return err
		}
		defer sub.Close()
		formatter.PrintInfo("已订阅 " + sub.ID + "，按 Ctrl+C 退出")

		for {
			entry, err := sub.Next(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if err := formatter.Print(entry); err != nil {
				return err
			}
		}
	},
}

// ===== 内容 =====

var contentFlags struct {
	name string
	kind string
}

var contentPinCmd = &cobra.Command{
	Use:   "pin <file.json>",
	Short: "固定 JSON 文档并返回 CID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		c, err := newClient(true)
		if err != nil {
			return err
		}
		ctx, cancel := cmdContext()
		defer cancel()

		name := contentFlags.name
		if name == "" {
			name = args[0]
		}
		ptr, err := c.PinContent(ctx, name, contentFlags.kind, json.RawMessage(raw))
		if err != nil {
			return err
		}
		return formatter.Print(ptr)
	},
}

var contentGetCmd = &cobra.Command{
	Use:   "get <cid>",
	Short: "读取文档原文",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _ := newClient(false)
		ctx, cancel := cmdContext()
		defer cancel()

		raw, err := c.FetchContent(ctx, args[0])
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(raw, '\n'))
		return err
	},
}

func init() {
	callCmd.PersistentFlags().StringVar(&callFlags.node, "node", "http://127.0.0.1:8680", "节点地址")
	callCmd.PersistentFlags().StringVar(&callFlags.keyFile, "key", "", "私钥文件（十六进制）")
	callCmd.PersistentFlags().DurationVar(&callFlags.timeout, "timeout", 30*time.Second, "请求超时")
	callCmd.PersistentFlags().StringVarP(&callFlags.project, "project", "p", "", "项目 slug")
	callCmd.PersistentFlags().StringSliceVar(&callFlags.proof, "proof", nil, "成员证明（逗号分隔）")

	projectCreateCmd.Flags().StringVar(&projectFlags.name, "name", "", "项目名称")
	projectCreateCmd.Flags().StringSliceVar(&projectFlags.users, "users", nil, "初始成员")
	projectCreateCmd.Flags().StringVar(&projectFlags.root, "root", "", "白名单根")
	projectAddUsersCmd.Flags().StringSliceVar(&projectFlags.users, "users", nil, "新增成员")
	projectAddUsersCmd.Flags().StringVar(&projectFlags.root, "root", "", "新白名单根")
	projectToggleCmd.Flags().IntVar(&projectFlags.service, "service", -1, "服务编号: 0 社交网络, 1 私信")
	projectCmd.AddCommand(projectCreateCmd, projectListCmd, projectGetCmd, projectAddUsersCmd, projectToggleCmd, projectMemberCmd)

	profileCmd.AddCommand(profileGetCmd, profilePseudoCmd, profileStatusCmd)
	articleCmd.AddCommand(articlePostCmd, articleCommentCmd, articleLastCmd)
	messageCmd.AddCommand(messageSendCmd, messageCurrentCmd, messageBurnCmd)

	for _, cmd := range []*cobra.Command{logsCmd, watchCmd} {
		cmd.Flags().StringSliceVar(&logsFlags.contracts, "contract", nil, "合约地址")
		cmd.Flags().StringSliceVar(&logsFlags.names, "name", nil, "事件名")
		cmd.Flags().StringSliceVar(&logsFlags.topics, "topic", nil, "主题（地址或 32 字节哈希或 CID）")
		cmd.Flags().Uint64Var(&logsFlags.fromSeq, "from-seq", 0, "起始序号（含）")
	}
	logsCmd.Flags().IntVar(&logsFlags.limit, "limit", 0, "最多返回条数")

	contentPinCmd.Flags().StringVar(&contentFlags.name, "name", "", "文档名称")
	contentPinCmd.Flags().StringVar(&contentFlags.kind, "kind", "", "文档类型: person | article | comment | message")
	contentCmd := &cobra.Command{Use: "content", Short: "内容固定与读取"}
	contentCmd.AddCommand(contentPinCmd, contentGetCmd)

	callCmd.AddCommand(
		projectCmd,
		profileCmd,
		articleCmd,
		pointerCommand("like", "点赞", (*client.Client).Like),
		pointerCommand("unlike", "取消点赞", (*client.Client).Unlike),
		pointerCommand("pin", "置顶", (*client.Client).Pin),
		pointerCommand("unpin", "取消置顶", (*client.Client).Unpin),
		addressCommand("follow", "关注", (*client.Client).Follow),
		addressCommand("unfollow", "取消关注", (*client.Client).Unfollow),
		followingCmd,
		messageCmd,
		logsCmd,
		watchCmd,
		contentCmd,
	)
}
