// social 社交网络节点与命令行工具
package main

func main() {
	Execute()
}
