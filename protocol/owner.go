package protocol

// Owner 实体的权威方：某个参与者，或服务器
type Owner struct {
	Server bool     `msgpack:"s" json:"server,omitempty"`
	Client ClientID `msgpack:"c" json:"client,omitempty"`
}

// ServerOwner 服务器拥有
func ServerOwner() Owner { return Owner{Server: true} }

// ClientOwner 指定参与者拥有
func ClientOwner(id ClientID) Owner { return Owner{Client: id} }

// IsServer 是否归服务器
func (o Owner) IsServer() bool { return o.Server }

// Is 是否归该参与者
func (o Owner) Is(id ClientID) bool { return !o.Server && o.Client == id }

func (o Owner) String() string {
	if o.Server {
		return "server"
	}
	return "client:" + o.Client.String()
}

// IsLocalAuthority 只有实体权威方的 Tick 才能发出该实体的位置/速度更新。
// local 为本进程身份：服务器为 ServerOwner()，客户端为 ClientOwner(自身 ID)。
func IsLocalAuthority(owner, local Owner) bool {
	if owner.Server || local.Server {
		return owner.Server && local.Server
	}
	return owner.Client != 0 && owner.Client == local.Client
}
