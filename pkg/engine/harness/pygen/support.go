package pygen

// supportSource is the fixed runtime support module bundled with every
// Python submission: the custom data structure classes and their
// decode/encode helpers. Python's scalars, arrays, and lists
// already round-trip through json.dumps/json.loads without per-type
// helpers, so this module only needs to cover ListNode, TreeNode, and
// Node.
const supportSource = `"""Custom data structure decoders/encoders shared by every generated case."""
from collections import deque


class ListNode:
    def __init__(self, val=0, next=None):
        self.val = val
        self.next = next


class TreeNode:
    def __init__(self, val=0, left=None, right=None):
        self.val = val
        self.left = left
        self.right = right


class Node:
    def __init__(self, val=0, neighbors=None):
        self.val = val
        self.neighbors = neighbors if neighbors is not None else []


def build_list_node(values):
    dummy = ListNode(0)
    tail = dummy
    for v in values:
        if v is None:
            continue
        tail.next = ListNode(v)
        tail = tail.next
    return dummy.next


def convert_list_node_to_json(head):
    out = []
    while head is not None:
        out.append(head.val)
        head = head.next
    return out


def build_tree_node(values):
    if not values or values[0] is None:
        return None
    root = TreeNode(values[0])
    queue = deque([root])
    i = 1
    n = len(values)
    while queue and i < n:
        node = queue.popleft()
        if i < n:
            if values[i] is not None:
                node.left = TreeNode(values[i])
                queue.append(node.left)
            i += 1
        if i < n:
            if values[i] is not None:
                node.right = TreeNode(values[i])
                queue.append(node.right)
            i += 1
    return root


def convert_tree_node_to_json(root):
    out = []
    if root is None:
        return out
    queue = deque([root])
    while queue:
        node = queue.popleft()
        if node is None:
            out.append(None)
            continue
        out.append(node.val)
        queue.append(node.left)
        queue.append(node.right)
    while out and out[-1] is None:
        out.pop()
    return out


def build_node(adjacency):
    if not adjacency:
        return None
    nodes = {label: Node(label) for label in range(1, len(adjacency) + 1)}
    for label in range(1, len(adjacency) + 1):
        for neighbor_label in adjacency[label - 1]:
            nodes[label].neighbors.append(nodes[neighbor_label])
    return nodes[1]


def convert_node_to_json(start):
    out = []
    if start is None:
        return out
    adjacency = {}
    visited = {start.val}
    queue = deque([start])
    max_label = start.val
    while queue:
        node = queue.popleft()
        labels = []
        for neighbor in node.neighbors:
            labels.append(neighbor.val)
            max_label = max(max_label, neighbor.val)
            if neighbor.val not in visited:
                visited.add(neighbor.val)
                queue.append(neighbor)
        adjacency[node.val] = labels
    for label in range(1, max_label + 1):
        out.append(adjacency.get(label, []))
    return out
`
